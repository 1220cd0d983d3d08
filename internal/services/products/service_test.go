package products_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printkit/internal/database"
	"printkit/internal/events"
	"printkit/internal/logger"
	"printkit/internal/models"
	"printkit/internal/services/printify/printifytest"
	"printkit/internal/services/products"
	"printkit/internal/templates"
)

func quietLogger() *logger.Logger {
	return logger.NewWithOutput("error", &bytes.Buffer{})
}

func TestCreateFromGeneratedTemplate(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	log := quietLogger()
	client := srv.Client(log)

	db, err := database.New("sqlite://:memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mem := &events.Memory{}
	svc := products.NewService(client, log, products.WithLedger(db), products.WithPublisher(mem))

	path := filepath.Join(t.TempDir(), "product.json")
	synth := templates.New(client, log)
	_, err = synth.GenerateFile(context.Background(), 5, 50, path, templates.GenerateOptions{AllVariants: true})
	require.NoError(t, err)

	product, err := svc.CreateFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Unisex Heavy Cotton Tee - Monster Digital", product.Title)

	stored := srv.Product(product.ID)
	require.NotNil(t, stored)
	assert.Len(t, stored.Variants, 2)

	history, err := svc.History(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, product.ID, history[0].RemoteID)
	assert.Equal(t, printifytest.ShopID, history[0].ShopID)
	assert.Equal(t, path, history[0].SourcePath)
	assert.Equal(t, 2, history[0].VariantCount)
	_, hasTitle := history[0].Payload["blueprint_title"]
	assert.False(t, hasTitle)

	rec, err := svc.Record(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, path, rec.SourcePath)
	_, err = svc.Record(context.Background(), "prod-404")
	assert.True(t, errors.Is(err, database.ErrNotFound))

	require.NoError(t, svc.Publish(context.Background(), product.ID, ""))
	history, err = svc.History(context.Background(), models.ProductStatusPublished, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	require.NoError(t, svc.Delete(context.Background(), product.ID))
	assert.Nil(t, srv.Product(product.ID))

	assert.Equal(t, []events.Type{events.ProductCreated, events.ProductPublished}, mem.Types())
}

func TestCreateRejectsInvalidDescriptor(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	svc := products.NewService(srv.Client(quietLogger()), quietLogger())

	_, err := svc.Create(context.Background(), &models.ProductDescriptor{Title: "No variants"}, "")
	var verr *models.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Empty(t, srv.Requests())
}

func TestCreateFromMissingFile(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	svc := products.NewService(srv.Client(quietLogger()), quietLogger())

	_, err := svc.CreateFromFile(context.Background(), filepath.Join(t.TempDir(), "product.json"))
	assert.Error(t, err)
}

func TestHistoryWithoutLedger(t *testing.T) {
	srv := printifytest.New(t)
	svc := products.NewService(srv.Client(quietLogger()), quietLogger())

	_, err := svc.History(context.Background(), "", 10)
	assert.True(t, errors.Is(err, products.ErrLedgerDisabled))
	_, err = svc.Record(context.Background(), "prod-1")
	assert.True(t, errors.Is(err, products.ErrLedgerDisabled))
	_, err = svc.Images(context.Background(), 10)
	assert.True(t, errors.Is(err, products.ErrLedgerDisabled))
}

func TestImagesReadsUploadLedger(t *testing.T) {
	srv := printifytest.New(t)
	log := quietLogger()
	db, err := database.New("sqlite://:memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RecordImage(context.Background(), &models.ImageRecord{AssetID: "upload-1", FileName: "a.png"}))
	svc := products.NewService(srv.Client(log), log, products.WithLedger(db))

	images, err := svc.Images(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "upload-1", images[0].AssetID)
}
