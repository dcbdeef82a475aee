package services

import (
	"context"
	"time"

	"github.com/yeremiapane/restaurant-pos-terminal/utils"
)

// RetryWithBackoff menjalankan fn sampai sukses atau attempts habis, dengan
// delay yang berlipat dua tiap percobaan. fn dioper sebagai closure, bukan
// nama operasi, sehingga tidak ada mode gagal "unknown operation".
// Error terakhir dikembalikan setelah seluruh percobaan gagal.
func RetryWithBackoff(ctx context.Context, label string, attempts int, baseDelay time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		// ValidationError / NotFoundError tidak akan sembuh dengan retry
		if IsValidationError(lastErr) || IsNotFoundError(lastErr) {
			return lastErr
		}

		if attempt == attempts {
			break
		}
		utils.ErrorLogger.Printf("%s failed (attempt %d/%d): %v, retrying in %v",
			label, attempt, attempts, lastErr, delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}

	utils.ErrorLogger.Printf("%s failed after %d attempts: %v", label, attempts, lastErr)
	return lastErr
}
