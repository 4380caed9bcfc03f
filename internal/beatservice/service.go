// Package beatservice resolves the metadata of a collaborative beat for
// execute and mint calls.
package beatservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/collabeat/internal/apperr"
	"github.com/starford/collabeat/internal/fetch"
	"github.com/starford/collabeat/internal/models"
)

// Aliases and fixed content of the synthesized base entries.
const (
	AliasName        = "name"
	AliasDescription = "description"
	AliasImage       = "image"

	Description = "Co-Create, Collaborate and Own The Beat"
	Image       = "ipfs://"
)

// DefaultName returns the name a beat gets when none is supplied.
func DefaultName(tokenID string) string {
	return fmt.Sprintf("Collabeat #%s", tokenID)
}

// Service assembles metadata. It holds no per-call state and is safe for
// concurrent use.
type Service struct {
	fetcher fetch.Fetcher
	logger  *slog.Logger
}

// NewService creates a new beat service. A nil logger uses slog.Default().
func NewService(fetcher fetch.Fetcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{fetcher: fetcher, logger: logger}
}

// Execute resolves the metadata update for a transaction against a beat.
// An empty history additionally yields the name, description and image entries.
func (s *Service) Execute(ctx context.Context, contract models.Contract, history []models.Metadata, tx models.Transaction) models.CallResult {
	if err := ValidateHistory(len(history)); err != nil {
		return s.fail(ctx, "execute", contract, err)
	}

	var entries []models.FinalMetadata
	if len(history) == 0 {
		entries = append(entries,
			baseEntry(contract, AliasName, DefaultName(tx.TokenID)),
			baseEntry(contract, AliasDescription, Description),
			baseEntry(contract, AliasImage, Image),
		)
	}
	entries = append(entries, transactionEntry(tx))
	return models.Succeeded(entries)
}

// Clone acknowledges a clone request. It always succeeds.
func (s *Service) Clone() bool {
	return true
}

func (s *Service) fail(ctx context.Context, op string, contract models.Contract, err error) models.CallResult {
	kind := apperr.KindOf(err)
	level := slog.LevelInfo
	if kind == "" || kind == apperr.KindFetch {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "call rejected",
		slog.String("op", op),
		slog.String("meta_contract_id", contract.ContractID),
		slog.String("kind", string(kind)),
		slog.String("error", err.Error()))
	return models.Failed(err.Error())
}

func baseEntry(contract models.Contract, alias, content string) models.FinalMetadata {
	return models.FinalMetadata{PublicKey: contract.PublicKey, Alias: alias, Content: content}
}

func transactionEntry(tx models.Transaction) models.FinalMetadata {
	return models.FinalMetadata{PublicKey: tx.PublicKey, Alias: tx.Alias, Content: tx.Data}
}

func ownershipEntries(records []models.OwnershipRecord) []models.FinalMetadata {
	out := make([]models.FinalMetadata, 0, len(records))
	for _, r := range records {
		out = append(out, models.FinalMetadata{PublicKey: r.Owner, Alias: "", Content: r.CID})
	}
	return out
}
