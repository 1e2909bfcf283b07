package service

import (
	"context"

	"github.com/alexanderramin/mirrorer/internal/catalog"
	"github.com/alexanderramin/mirrorer/internal/domain"
	"github.com/alexanderramin/mirrorer/internal/simulation"
)

// ImportResult holds the outcome of a catalog import.
type ImportResult struct {
	Users         int `json:"users"`
	Replaced      int `json:"replaced"`
	HistoryItems  int `json:"history_items"`
	ExposureItems int `json:"exposure_items"`
	ModelOutputs  int `json:"model_outputs"`
}

type ImportService interface {
	ImportFile(ctx context.Context, filePath string) (*ImportResult, error)
	ImportCatalog(ctx context.Context, f *catalog.File) (*ImportResult, error)
}

// SimulateRequest selects a user and optionally overrides the built prompt.
type SimulateRequest struct {
	UserID string
	Prompt string
	// Backends restricts the run to the named backends; empty runs all.
	Backends []string
}

// SimulateResult is a completed run together with the prompt it used.
type SimulateResult struct {
	User    *domain.User
	Prompt  string
	Summary simulation.RunSummary
}

type SimulationService interface {
	// Simulate runs every selected backend for one user and reports each
	// settled slot to deliver as it resolves.
	Simulate(ctx context.Context, req SimulateRequest, deliver func(simulation.SlotUpdate)) (*SimulateResult, error)
}
