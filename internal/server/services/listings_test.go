package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/logging"
	"github.com/dmitrijs2005/gophmarket/internal/server/models"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	putKey, putContentType string
	getErr                 error
}

func (p *fakePresigner) PutURL(_ context.Context, key, contentType string) (string, error) {
	p.putKey, p.putContentType = key, contentType
	return "https://s3.test/put/" + key, nil
}

func (p *fakePresigner) GetURL(_ context.Context, key string) (string, error) {
	if p.getErr != nil {
		return "", p.getErr
	}
	return "https://s3.test/get/" + key, nil
}

func newListingFixture(p *fakePresigner) (*ListingService, *repomanager.MemoryRepositoryManager) {
	repos := repomanager.NewMemoryRepositoryManager()
	if p == nil {
		return NewListingService(repos, nil, logging.Nop()), repos
	}
	return NewListingService(repos, p, logging.Nop()), repos
}

func TestListingCreate(t *testing.T) {
	svc, _ := newListingFixture(nil)
	ctx := context.Background()

	l, err := svc.Create(ctx, "seller", ListingInput{Title: "  Desk lamp ", PriceCents: 1500, Currency: "eur"})
	require.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, "Desk lamp", l.Title)
	assert.Equal(t, "EUR", l.Currency)
	assert.Equal(t, models.ListingActive, l.Status)
	assert.Equal(t, "seller", l.SellerID)

	l, err = svc.Create(ctx, "seller", ListingInput{Title: "Chair"})
	require.NoError(t, err)
	assert.Equal(t, "USD", l.Currency)
}

func TestListingCreate_Validation(t *testing.T) {
	svc, _ := newListingFixture(nil)

	tests := map[string]ListingInput{
		"no title":       {Title: "  "},
		"long title":     {Title: strings.Repeat("x", 201)},
		"negative price": {Title: "Lamp", PriceCents: -1},
		"bad currency":   {Title: "Lamp", Currency: "EURO"},
		"digit currency": {Title: "Lamp", Currency: "U5D"},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "seller", in)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestListingList(t *testing.T) {
	svc, _ := newListingFixture(nil)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		seller := "a"
		if i%5 == 0 {
			seller = "b"
		}
		_, err := svc.Create(ctx, seller, ListingInput{Title: "item"})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 0, 0, "")
	require.NoError(t, err)
	assert.Len(t, page, DefaultListLimit)

	page, err = svc.List(ctx, 1000, 20, "")
	require.NoError(t, err)
	assert.Len(t, page, 5)

	page, err = svc.List(ctx, 10, 0, "b")
	require.NoError(t, err)
	assert.Len(t, page, 5)
	for _, l := range page {
		assert.Equal(t, "b", l.SellerID)
	}

	_, err = svc.List(ctx, 10, -1, "")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestListingUpdate(t *testing.T) {
	svc, _ := newListingFixture(nil)
	ctx := context.Background()

	l, err := svc.Create(ctx, "seller", ListingInput{Title: "Lamp", PriceCents: 100})
	require.NoError(t, err)

	price := int64(250)
	sold := models.ListingSold
	got, err := svc.Update(ctx, "seller", l.ID, models.ListingUpdate{PriceCents: &price, Status: &sold})
	require.NoError(t, err)
	assert.Equal(t, int64(250), got.PriceCents)
	assert.Equal(t, models.ListingSold, got.Status)
	assert.Equal(t, "Lamp", got.Title)

	_, err = svc.Update(ctx, "intruder", l.ID, models.ListingUpdate{PriceCents: &price})
	assert.ErrorIs(t, err, common.ErrorForbidden)

	bogus := models.ListingStatus("gone")
	_, err = svc.Update(ctx, "seller", l.ID, models.ListingUpdate{Status: &bogus})
	assert.ErrorIs(t, err, common.ErrorValidation)

	empty := " "
	_, err = svc.Update(ctx, "seller", l.ID, models.ListingUpdate{Title: &empty})
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = svc.Update(ctx, "seller", "missing", models.ListingUpdate{PriceCents: &price})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListingDelete(t *testing.T) {
	svc, repos := newListingFixture(nil)
	ctx := context.Background()

	l, err := svc.Create(ctx, "seller", ListingInput{Title: "Lamp"})
	require.NoError(t, err)
	require.NoError(t, repos.Favorites(nil).Add(ctx, "buyer", l.ID))

	assert.ErrorIs(t, svc.Delete(ctx, "intruder", l.ID), common.ErrorForbidden)
	require.NoError(t, svc.Delete(ctx, "seller", l.ID))

	_, err = svc.Get(ctx, l.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	favs, err := repos.Favorites(nil).List(ctx, "buyer")
	require.NoError(t, err)
	assert.Empty(t, favs)

	assert.ErrorIs(t, svc.Delete(ctx, "seller", l.ID), common.ErrorNotFound)
}

func TestListingImageUploadURL(t *testing.T) {
	p := &fakePresigner{}
	svc, _ := newListingFixture(p)
	ctx := context.Background()

	l, err := svc.Create(ctx, "seller", ListingInput{Title: "Lamp"})
	require.NoError(t, err)
	assert.Empty(t, l.ImageURL)

	_, _, err = svc.ImageUploadURL(ctx, "intruder", l.ID, "image/png")
	assert.ErrorIs(t, err, common.ErrorForbidden)

	url, key, err := svc.ImageUploadURL(ctx, "seller", l.ID, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "listings/"+l.ID+"/"))
	assert.Equal(t, "https://s3.test/put/"+key, url)
	assert.Equal(t, "image/png", p.putContentType)

	got, err := svc.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, key, got.ImageKey)
	assert.Equal(t, "https://s3.test/get/"+key, got.ImageURL)

	// A presign failure degrades to a listing without a URL.
	p.getErr = errors.New("no creds")
	got, err = svc.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ImageURL)
}

func TestListingImageUploadURL_Disabled(t *testing.T) {
	svc, _ := newListingFixture(nil)
	ctx := context.Background()

	l, err := svc.Create(ctx, "seller", ListingInput{Title: "Lamp"})
	require.NoError(t, err)

	_, _, err = svc.ImageUploadURL(ctx, "seller", l.ID, "image/png")
	assert.ErrorIs(t, err, ErrImagesDisabled)
}
