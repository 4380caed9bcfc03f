package beatservice

import (
	"context"

	"github.com/starford/collabeat/internal/apperr"
	"github.com/starford/collabeat/internal/models"
	"github.com/starford/collabeat/internal/parser"
	"github.com/starford/collabeat/internal/payload"
)

const (
	invalidDataStructure = "Invalid data structure"
	contentFetchFailed   = "Content fetch failed"
)

// MintSource selects how the metadata of a new beat is obtained.
// It is one of PlainCID, EncodedPayload or TransactionEcho.
type MintSource interface {
	mintSource()
}

// PlainCID imports ownership records stored at Identifier, fetched through
// Address. An empty Identifier mints the base entries only.
type PlainCID struct {
	Address    string
	Identifier string
}

// EncodedPayload carries a hex, ABI-encoded (name, address, identifier) tuple.
type EncodedPayload struct {
	Data string
}

// TransactionEcho mints the base entries followed by the transaction's own entry.
type TransactionEcho struct {
	Transaction models.Transaction
}

func (PlainCID) mintSource()        {}
func (EncodedPayload) mintSource()  {}
func (TransactionEcho) mintSource() {}

// MintRequest is a mint call after source selection.
type MintRequest struct {
	TokenID string
	Source  MintSource
}

// NewMintRequest selects the mint source from the fields present in call:
// a transaction wins over an encoded payload, which wins over a plain CID.
func NewMintRequest(call models.MintCall) MintRequest {
	req := MintRequest{TokenID: call.TokenID}
	switch {
	case call.Transaction != nil:
		req.Source = TransactionEcho{Transaction: *call.Transaction}
		if req.TokenID == "" {
			req.TokenID = call.Transaction.TokenID
		}
	case call.Data != "":
		req.Source = EncodedPayload{Data: call.Data}
	default:
		req.Source = PlainCID{Address: call.Multiaddr, Identifier: call.CID}
	}
	return req
}

// Mint resolves the initial metadata of a beat. Mint is all-or-nothing: on
// any failure the result carries no entries.
func (s *Service) Mint(ctx context.Context, contract models.Contract, req MintRequest) models.CallResult {
	var (
		entries []models.FinalMetadata
		err     error
	)
	switch src := req.Source.(type) {
	case PlainCID:
		entries, err = s.mintPlain(ctx, contract, req.TokenID, src)
	case EncodedPayload:
		entries, err = s.mintEncoded(ctx, contract, req.TokenID, src)
	case TransactionEcho:
		entries = s.mintEcho(contract, req.TokenID, src)
	case nil:
		entries, err = s.mintPlain(ctx, contract, req.TokenID, PlainCID{})
	default:
		err = apperr.New(apperr.KindDecode, invalidDataStructure, nil)
	}
	if err != nil {
		return s.fail(ctx, "mint", contract, err)
	}
	return models.Succeeded(entries)
}

func (s *Service) mintPlain(ctx context.Context, contract models.Contract, tokenID string, src PlainCID) ([]models.FinalMetadata, error) {
	entries := []models.FinalMetadata{
		baseEntry(contract, AliasName, DefaultName(tokenID)),
		baseEntry(contract, AliasDescription, Description),
		baseEntry(contract, AliasImage, Image),
	}
	if src.Identifier == "" {
		return entries, nil
	}

	text, err := s.fetchText(ctx, src.Identifier, src.Address)
	if err != nil {
		return nil, err
	}
	records, err := parser.ParseOwnership(text)
	if err != nil {
		return nil, apperr.New(apperr.KindParse, invalidDataStructure, err)
	}
	return append(entries, ownershipEntries(records)...), nil
}

func (s *Service) mintEncoded(ctx context.Context, contract models.Contract, tokenID string, src EncodedPayload) ([]models.FinalMetadata, error) {
	entries := []models.FinalMetadata{
		baseEntry(contract, AliasDescription, Description),
		baseEntry(contract, AliasImage, Image),
	}
	name := DefaultName(tokenID)

	if src.Data != "" {
		p, err := payload.Decode(src.Data)
		if err != nil {
			return nil, apperr.New(apperr.KindDecode, invalidDataStructure+": "+err.Error(), err)
		}
		if p.Name != "" {
			name = p.Name
		}
		if p.Identifier != "" {
			text, err := s.fetchText(ctx, p.Identifier, p.Address)
			if err != nil {
				return nil, err
			}
			records, err := parser.ParseOwnership(text)
			if err != nil {
				return nil, apperr.New(apperr.KindParse, invalidDataStructure+": "+err.Error(), err)
			}
			entries = append(entries, ownershipEntries(records)...)
		}
	}

	return append(entries, baseEntry(contract, AliasName, name)), nil
}

func (s *Service) mintEcho(contract models.Contract, tokenID string, src TransactionEcho) []models.FinalMetadata {
	return []models.FinalMetadata{
		baseEntry(contract, AliasName, DefaultName(tokenID)),
		baseEntry(contract, AliasDescription, Description),
		baseEntry(contract, AliasImage, Image),
		transactionEntry(src.Transaction),
	}
}

// fetchText retrieves identifier with the caller's address and the default timeout.
func (s *Service) fetchText(ctx context.Context, identifier, address string) (string, error) {
	if s.fetcher == nil {
		return "", apperr.New(apperr.KindFetch, contentFetchFailed+": no content fetcher configured", nil)
	}
	data, err := s.fetcher.Fetch(ctx, identifier, address, 0)
	if err != nil {
		return "", apperr.New(apperr.KindFetch, contentFetchFailed+": "+err.Error(), err)
	}
	text, err := parser.DecodeText(data)
	if err != nil {
		return "", apperr.New(apperr.KindFetch, contentFetchFailed+": "+err.Error(), err)
	}
	return text, nil
}
