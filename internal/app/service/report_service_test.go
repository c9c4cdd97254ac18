package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/e4rthen/storefront-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeObjectStore struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (f *fakeObjectStore) PutObject(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.key, f.contentType, f.body = key, contentType, body
	return "https://cdn.example.com/" + key, nil
}

func TestReportService_BuildDailyOrderReport(t *testing.T) {
	testDB := setupTestDB(t)
	svc := NewReportService(repository.NewOrderRepository(testDB), nil)
	alice, _ := createUser(t, testDB, "alice", "alice@example.com")
	product := createProduct(t, testDB, "A", "10.00")

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{day.Add(-time.Second), day.Add(time.Hour), day.Add(23 * time.Hour), day.Add(24 * time.Hour)} {
		order := &model.Order{
			UserID:       alice.ID,
			TotalPrice:   money("23.00"),
			ShippingCost: money("3.00"),
			FullName:     "Alice Example",
			City:         "Springfield",
			CreatedAt:    at,
			Items:        []model.OrderItem{{ProductID: product.ID, Quantity: 2, Price: money("10.00")}},
		}
		require.NoError(t, testDB.Create(order).Error)
	}

	report, err := svc.BuildDailyOrderReport(context.Background(), day.Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Orders)
	assert.Equal(t, "46.00", report.Revenue.StringFixed(2))
	assert.Equal(t, "orders-2024-03-01.xlsx", report.Filename())

	f, err := excelize.OpenReader(bytes.NewReader(report.Content))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Order ID", rows[0][0])
	assert.Equal(t, "Alice Example", rows[1][3])
	assert.Equal(t, "2", rows[1][5])
	assert.Equal(t, "23.00", rows[1][7])
	assert.Equal(t, "Orders", rows[4][0])
	assert.Equal(t, "2", rows[4][1])
	assert.Equal(t, "46.00", rows[4][7])
}

func TestReportService_UploadDailyOrderReport(t *testing.T) {
	testDB := setupTestDB(t)
	store := &fakeObjectStore{}
	svc := NewReportService(repository.NewOrderRepository(testDB), store)

	url, err := svc.UploadDailyOrderReport(context.Background(), time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "reports/orders-2024-03-01.xlsx", store.key)
	assert.Equal(t, "https://cdn.example.com/reports/orders-2024-03-01.xlsx", url)
	assert.NotEmpty(t, store.body)

	store.err = errors.New("access denied")
	_, err = svc.UploadDailyOrderReport(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestReportService_UploadWithoutStore(t *testing.T) {
	testDB := setupTestDB(t)
	svc := NewReportService(repository.NewOrderRepository(testDB), nil)

	_, err := svc.UploadDailyOrderReport(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrReportStorageMissing)
}
