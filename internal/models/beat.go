// Package models defines the domain types for collabeat.
//
// JSON field names follow the host's wire format so values can be passed
// through the HTTP, MCP and CLI surfaces without translation.
package models

// Contract identifies the meta contract a call runs against. Its public key
// anchors every synthesized metadata entry.
type Contract struct {
	TokenKey   string `json:"token_key"`
	ContractID string `json:"meta_contract_id"`
	PublicKey  string `json:"public_key"`
}

// Metadata is one previously recorded metadata fact about a beat.
type Metadata struct {
	DataKey   string `json:"data_key"`
	Alias     string `json:"alias"`
	CID       string `json:"cid"`
	PublicKey string `json:"public_key"`
}

// Transaction is the event that triggered the call.
type Transaction struct {
	Hash       string `json:"hash"`
	TokenKey   string `json:"token_key"`
	DataKey    string `json:"data_key"`
	Nonce      int64  `json:"nonce"`
	OriginPeer string `json:"from_peer_id"`
	HostID     string `json:"host_id"`
	Status     int64  `json:"status"`
	Data       string `json:"data"`
	PublicKey  string `json:"public_key"`
	Alias      string `json:"alias"`
	Timestamp  uint64 `json:"timestamp"`
	ContractID string `json:"meta_contract_id"`
	Method     string `json:"method"`
	ErrorText  string `json:"error_text"`
	TokenID    string `json:"token_id"`
}

// FinalMetadata is a single output entry. Order within a result is significant.
type FinalMetadata struct {
	PublicKey string `json:"public_key"`
	Alias     string `json:"alias"`
	Content   string `json:"content"`
}

// CallResult is returned by every execute and mint call.
// A failed result has no entries and a non-empty error text.
type CallResult struct {
	Succeeded bool            `json:"result"`
	Entries   []FinalMetadata `json:"metadatas"`
	ErrorText string          `json:"error_string"`
}

// Succeeded builds a successful result. A nil slice is normalised to empty.
func Succeeded(entries []FinalMetadata) CallResult {
	if entries == nil {
		entries = []FinalMetadata{}
	}
	return CallResult{Succeeded: true, Entries: entries}
}

// Failed builds a failed result carrying msg.
func Failed(msg string) CallResult {
	return CallResult{Succeeded: false, Entries: []FinalMetadata{}, ErrorText: msg}
}

// ExecuteCall is the wire form of an execute invocation.
type ExecuteCall struct {
	Contract    Contract    `json:"contract"`
	Metadatas   []Metadata  `json:"metadatas"`
	Transaction Transaction `json:"transaction"`
}

// MintCall is the wire form of a mint invocation. Which optional fields are
// set decides how the beat is minted: a Transaction echoes it, Data carries an
// ABI-encoded payload, otherwise CID and Multiaddr point at ownership records.
type MintCall struct {
	Contract    Contract     `json:"contract"`
	TokenID     string       `json:"token_id"`
	Multiaddr   string       `json:"ipfs_multiaddr,omitempty"`
	CID         string       `json:"cid,omitempty"`
	Data        string       `json:"data,omitempty"`
	Transaction *Transaction `json:"transaction,omitempty"`
}
