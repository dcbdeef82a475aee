package models

import "fmt"

// ValidationError dikembalikan saat argumen caller tidak valid (guest count
// negatif, split kosong, dsb). Tidak ada network call yang terjadi sebelum
// error ini dikembalikan.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

// NotFoundError dikembalikan saat meja/tab yang direferensikan tidak ada
// di cache.
type NotFoundError struct {
	Entity string // "table" atau "tab"
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

// NewTableNotFound -> NotFoundError untuk nomor meja
func NewTableNotFound(tableNumber int) *NotFoundError {
	return &NotFoundError{Entity: "table", Key: fmt.Sprintf("%d", tableNumber)}
}

// NewTabNotFound -> NotFoundError untuk id tab
func NewTabNotFound(tabID string) *NotFoundError {
	return &NotFoundError{Entity: "tab", Key: tabID}
}
