package main

import (
	"encoding/json"
	"fmt"
	"os"

	"crosscheck/internal/billing"
	"crosscheck/internal/sales"
)

// dataset is the JSON fixture shape accepted at startup. It mirrors the
// store models so operators can snapshot both ledgers into one file.
type dataset struct {
	Orders   []sales.Order           `json:"orders"`
	Invoices []billing.Invoice       `json:"invoices"`
	Payments []billing.Payment       `json:"payments"`
	Postings []billing.LedgerPosting `json:"postings"`
}

func loadDataset(path string, salesStore *sales.InMemoryStore, billingStore *billing.InMemoryStore) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}

	var ds dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return fmt.Errorf("parse dataset: %w", err)
	}

	for _, order := range ds.Orders {
		salesStore.Put(order)
	}
	for _, inv := range ds.Invoices {
		billingStore.AddInvoice(inv)
	}
	for _, p := range ds.Payments {
		billingStore.AddPayment(p)
	}
	for _, e := range ds.Postings {
		billingStore.AddPosting(e)
	}
	return nil
}
