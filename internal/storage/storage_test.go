package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"

	"github.com/mselser95/restock-sniper/pkg/types"
)

func testOffer() *types.QualifiedOffer {
	return &types.QualifiedOffer{
		ID:           "11111111-2222-3333-4444-555555555555",
		ItemID:       "B08XYZ1234",
		ListingID:    "listing-aaa",
		DiscoveredAt: time.Now(),
	}
}

func testResult(outcome types.CheckoutOutcome) *types.CheckoutResult {
	return &types.CheckoutResult{
		Outcome:    outcome,
		OfferID:    "11111111-2222-3333-4444-555555555555",
		ItemID:     "B08XYZ1234",
		ListingID:  "listing-aaa",
		PurchaseID: "purchase-778",
		StatusCode: 200,
		ExecutedAt: time.Now(),
		Latency:    1200 * time.Millisecond,
	}
}

func TestConsoleStorage_StoreQualifiedOffer(t *testing.T) {
	logger := zap.NewNop()
	storage := NewConsoleStorage(logger)

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := storage.StoreQualifiedOffer(context.Background(), testOffer())

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	io.Copy(&buf, r)
	output := buf.String()

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if !bytes.Contains([]byte(output), []byte("QUALIFIED OFFER")) {
		t.Error("expected output to contain 'QUALIFIED OFFER'")
	}
	if !bytes.Contains([]byte(output), []byte("B08XYZ1234")) {
		t.Error("expected output to contain the item id")
	}
}

func TestConsoleStorage_StorePurchase(t *testing.T) {
	logger := zap.NewNop()
	storage := NewConsoleStorage(logger)

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := storage.StorePurchase(context.Background(), testResult(types.CheckoutCommitted))

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	io.Copy(&buf, r)
	output := buf.String()

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if !bytes.Contains([]byte(output), []byte("PURCHASE COMMITTED")) {
		t.Error("expected output to contain 'PURCHASE COMMITTED'")
	}
	if !bytes.Contains([]byte(output), []byte("purchase-778")) {
		t.Error("expected output to contain the purchase id")
	}
}

func TestConsoleStorage_Close(t *testing.T) {
	storage := NewConsoleStorage(zap.NewNop())

	if err := storage.Close(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestPostgresStorage_StoreQualifiedOffer(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	storage := &PostgresStorage{db: db, logger: zap.NewNop()}
	offer := testOffer()

	mock.ExpectExec("INSERT INTO qualified_offers").
		WithArgs(offer.ID, offer.ItemID, offer.ListingID, offer.DiscoveredAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := storage.StoreQualifiedOffer(context.Background(), offer); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStorage_StorePurchase(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	storage := &PostgresStorage{db: db, logger: zap.NewNop()}
	result := testResult(types.CheckoutUnconfirmed)

	mock.ExpectExec("INSERT INTO purchases").
		WithArgs(
			result.OfferID, result.ItemID, result.ListingID, result.PurchaseID,
			"unconfirmed", result.StatusCode, result.ExecutedAt,
			result.Latency.Milliseconds(), "",
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := storage.StorePurchase(context.Background(), result); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStorage_StorePurchaseInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	storage := &PostgresStorage{db: db, logger: zap.NewNop()}

	mock.ExpectExec("INSERT INTO purchases").
		WillReturnError(errors.New("connection reset"))

	if err := storage.StorePurchase(context.Background(), testResult(types.CheckoutFailed)); err == nil {
		t.Error("expected an error")
	}
}
