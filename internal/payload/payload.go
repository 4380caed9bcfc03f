// Package payload decodes the ABI-encoded mint payload carried in a
// transaction's data field: a tuple of three dynamic strings
// (name, address, identifier), hex encoded.
package payload

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Fields is the number of values in a mint payload tuple.
const Fields = 3

// Payload is a decoded mint payload.
type Payload struct {
	Name       string
	Address    string
	Identifier string
}

var arguments = func() abi.Arguments {
	str, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Name: "name", Type: str}, {Name: "address", Type: str}, {Name: "identifier", Type: str}}
}()

// HexError reports data that is not valid hexadecimal.
type HexError struct{ Err error }

func (e *HexError) Error() string { return e.Err.Error() }
func (e *HexError) Unwrap() error { return e.Err }

// ABIError reports bytes that do not decode as the expected tuple.
type ABIError struct{ Err error }

func (e *ABIError) Error() string { return e.Err.Error() }
func (e *ABIError) Unwrap() error { return e.Err }

// ArityError reports a decoded tuple with the wrong number of values.
type ArityError struct{ Got int }

func (e *ArityError) Error() string {
	return fmt.Sprintf("expected %d fields, got %d", Fields, e.Got)
}

// Decode hex-decodes data (with or without a 0x prefix) and unpacks the
// (name, address, identifier) tuple.
func Decode(data string) (Payload, error) {
	if !strings.HasPrefix(data, "0x") && !strings.HasPrefix(data, "0X") {
		data = "0x" + data
	}
	raw, err := hexutil.Decode(data)
	if err != nil {
		return Payload{}, &HexError{Err: err}
	}

	values, err := arguments.Unpack(raw)
	if err != nil {
		return Payload{}, &ABIError{Err: err}
	}
	if len(values) != Fields {
		return Payload{}, &ArityError{Got: len(values)}
	}

	var out [Fields]string
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			return Payload{}, &ABIError{Err: fmt.Errorf("field %d: want string, got %T", i, v)}
		}
		out[i] = s
	}
	return Payload{Name: out[0], Address: out[1], Identifier: out[2]}, nil
}

// Encode packs p and returns it as 0x-prefixed hex.
func Encode(p Payload) (string, error) {
	raw, err := arguments.Pack(p.Name, p.Address, p.Identifier)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(raw), nil
}
