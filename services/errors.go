package services

import (
	"errors"
	"sync"

	"github.com/yeremiapane/restaurant-pos-terminal/models"
)

// RemoteFailure menandai operasi yang gagal di sisi persistence API (response
// tidak sukses atau call-nya sendiri error). Operasi yang gagal sudah
// di-rollback sebelum error ini dikembalikan ke caller.
type RemoteFailure struct {
	Op  string
	Err error
}

func (e *RemoteFailure) Error() string {
	return "remote call " + e.Op + " failed: " + e.Err.Error()
}

func (e *RemoteFailure) Unwrap() error {
	return e.Err
}

// IsValidationError -> cek taxonomy via errors.As (aman untuk wrapped error)
func IsValidationError(err error) bool {
	var ve *models.ValidationError
	return errors.As(err, &ve)
}

// IsNotFoundError -> referensi meja/tab tidak ada di cache
func IsNotFoundError(err error) bool {
	var nf *models.NotFoundError
	return errors.As(err, &nf)
}

// IsRemoteFailure -> kegagalan persistence API setelah rollback
func IsRemoteFailure(err error) bool {
	var rf *RemoteFailure
	return errors.As(err, &rf)
}

// ErrorTracker menyimpan error terakhir per meja dan per tab, plus satu slot
// global untuk kegagalan kelas inisialisasi. Dipakai presentasi untuk
// menampilkan notifikasi dan di-clear setelah user melihatnya.
type ErrorTracker struct {
	mu          sync.RWMutex
	tableErrors map[int]string
	tabErrors   map[string]string
	globalError string
}

func NewErrorTracker() *ErrorTracker {
	return &ErrorTracker{
		tableErrors: make(map[int]string),
		tabErrors:   make(map[string]string),
	}
}

// RecordTableError -> catat error scoped ke satu meja
func (t *ErrorTracker) RecordTableError(tableNumber int, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tableErrors[tableNumber] = message
}

// RecordTabError -> catat error scoped ke satu tab
func (t *ErrorTracker) RecordTabError(tabID, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tabErrors[tabID] = message
}

// RecordGlobalError -> kegagalan inisialisasi / load awal
func (t *ErrorTracker) RecordGlobalError(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.globalError = message
}

// TableError -> error terakhir untuk meja, kalau ada
func (t *ErrorTracker) TableError(tableNumber int) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	msg, ok := t.tableErrors[tableNumber]
	return msg, ok
}

// TabError -> error terakhir untuk tab, kalau ada
func (t *ErrorTracker) TabError(tabID string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	msg, ok := t.tabErrors[tabID]
	return msg, ok
}

// GlobalError -> error global terakhir
func (t *ErrorTracker) GlobalError() (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.globalError, t.globalError != ""
}

// ClearTableError / ClearTabError / ClearAll -> dipanggil presentasi setelah
// notifikasi ditampilkan
func (t *ErrorTracker) ClearTableError(tableNumber int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tableErrors, tableNumber)
}

func (t *ErrorTracker) ClearTabError(tabID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tabErrors, tabID)
}

func (t *ErrorTracker) ClearAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tableErrors = make(map[int]string)
	t.tabErrors = make(map[string]string)
	t.globalError = ""
}

// Snapshot -> salinan seluruh error untuk endpoint inspeksi
func (t *ErrorTracker) Snapshot() (tables map[int]string, tabs map[string]string, global string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tables = make(map[int]string, len(t.tableErrors))
	for k, v := range t.tableErrors {
		tables[k] = v
	}
	tabs = make(map[string]string, len(t.tabErrors))
	for k, v := range t.tabErrors {
		tabs[k] = v
	}
	return tables, tabs, t.globalError
}
