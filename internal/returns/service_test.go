package returns

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/client"
	"storefront/internal/client/clienttest"
	"storefront/internal/orders"
)

func TestList(t *testing.T) {
	backend := clienttest.New(t)
	backend.Respond(http.MethodGet, "/returns/requests/", http.StatusOK,
		`[{"id":2,"type":1,"reason":"broken","status":0,"order":{"id":3,"order_no":"ORDER3"},"images":[{"id":1,"image":"/media/a.jpg"}]}]`)
	svc := NewService(backend.Client(t, nil))

	status := StatusPending
	page, err := svc.List(context.Background(), ListParams{Status: &status, Type: TypeReturn})
	require.NoError(t, err)

	call := backend.Last(t)
	assert.Equal(t, "0", call.Query.Get("status"))
	assert.Equal(t, "1", call.Query.Get("type"))

	require.Len(t, page.Results, 1)
	req := page.Results[0]
	assert.Equal(t, "pending", req.Status.String())
	assert.Equal(t, "ORDER3", req.Order.OrderNo)
	assert.Equal(t, "/media/a.jpg", req.Images[0].Image)
}

func TestGetAndCreate(t *testing.T) {
	backend := clienttest.New(t)
	backend.Respond(http.MethodGet, "/returns/requests/2/", http.StatusOK, `{"id":2,"status":1}`)
	backend.Respond(http.MethodPost, "/returns/requests/", http.StatusCreated, `{"id":5,"status":0}`)
	svc := NewService(backend.Client(t, nil))
	ctx := context.Background()

	got, err := svc.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)

	created, err := svc.Create(ctx, NewRequest{OrderID: 3, Type: TypeExchange, Reason: "wrong size"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)
	assert.Equal(t, map[string]any{"order_id": float64(3), "type": float64(2), "reason": "wrong size"}, backend.Last(t).JSON(t))
}

func TestUploadImage(t *testing.T) {
	backend := clienttest.New(t)
	backend.Respond(http.MethodPost, "/returns/upload/", http.StatusOK, `{"url":"/media/returns/x.png"}`)
	svc := NewService(backend.Client(t, nil))

	result, err := svc.UploadImage(context.Background(), Upload{
		Filename:    "x.png",
		ContentType: "image/png",
		Content:     strings.NewReader("png-bytes"),
		Fields:      map[string]string{"return_id": "5"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/media/returns/x.png", result.Location())

	call := backend.Last(t)
	mediaType, params, err := mime.ParseMediaType(call.ContentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(bytes.NewReader(call.Body), params["boundary"])
	parts := map[string]string{}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, _ := io.ReadAll(part)
		parts[part.FormName()] = string(data)
		if part.FormName() == ImageField {
			assert.Equal(t, "x.png", part.FileName())
			assert.Equal(t, "image/png", part.Header.Get("Content-Type"))
		}
	}
	assert.Equal(t, map[string]string{"return_id": "5", "image": "png-bytes"}, parts)
}

func TestUploadResult_Location(t *testing.T) {
	assert.Equal(t, "/media/b.jpg", UploadResult{Image: "/media/b.jpg"}.Location())
}

func TestSubmitShipping(t *testing.T) {
	backend := clienttest.New(t)
	svc := NewService(backend.Client(t, nil))

	_, err := svc.SubmitShipping(context.Background(), 5, ShippingInfo{ShippingCompany: "SF", ShippingNo: "SF123"})
	require.NoError(t, err)

	call := backend.Last(t)
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "/returns/requests/5/shipping/", call.Path)
	assert.Equal(t, map[string]any{"shipping_company": "SF", "shipping_no": "SF123"}, call.JSON(t))
}

func TestOrderLookups(t *testing.T) {
	backend := clienttest.New(t)
	backend.Respond(http.MethodGet, "/orders/orders/", http.StatusOK, `[]`)
	backend.Respond(http.MethodGet, "/orders/orders/3/", http.StatusOK, `{"id":3}`)
	backend.Respond(http.MethodGet, "/orders/orders/3/products/", http.StatusOK, `[{"id":1}]`)
	svc := NewService(backend.Client(t, nil))
	ctx := context.Background()

	_, err := svc.ReturnableOrders(ctx, orders.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, "3", backend.Last(t).Query.Get("status"))

	_, err = svc.SearchOrders(ctx, orders.ListParams{Search: "ORDER3"})
	require.NoError(t, err)
	assert.Equal(t, "ORDER3", backend.Last(t).Query.Get("search"))
	assert.Empty(t, backend.Last(t).Query.Get("status"))

	order, err := svc.OrderDetail(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), order.ID)

	items, err := svc.OrderProducts(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, items.Count)
}

func TestUploadImage_NoContent(t *testing.T) {
	backend := clienttest.New(t)
	svc := NewService(backend.Client(t, nil))

	_, err := svc.UploadImage(context.Background(), Upload{Filename: "x.png"})
	assert.ErrorIs(t, err, client.ErrConfig)
	assert.Empty(t, backend.Calls())
}
