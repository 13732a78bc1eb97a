package addresses

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/client/clienttest"
	"storefront/internal/session"
)

type fixedUser struct {
	id int64
	ok bool
}

func (u fixedUser) UserID() (int64, bool) { return u.id, u.ok }

func TestList(t *testing.T) {
	backend := clienttest.New(t)
	backend.Respond(http.MethodGet, "/users/7/addresses/", http.StatusOK,
		`[{"id":1,"receiver":"Li","phone":"13800000000","province":"P","city":"C","district":"D","address":"Street 1","is_default":true}]`)
	svc := NewService(backend.Client(t, nil), fixedUser{id: 7, ok: true})

	page, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.True(t, page.Results[0].IsDefault)
}

func TestPaths(t *testing.T) {
	backend := clienttest.New(t)
	svc := NewService(backend.Client(t, nil), fixedUser{id: 7, ok: true})
	ctx := context.Background()

	input := Input{Receiver: "Li", Phone: "13800000000", Province: "P", City: "C", District: "D", Address: "Street 1"}
	_, err := svc.Create(ctx, input)
	require.NoError(t, err)
	_, err = svc.Update(ctx, 3, input)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, 3))
	_, err = svc.SetDefault(ctx, 3)
	require.NoError(t, err)

	calls := backend.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, [2]string{http.MethodPost, "/users/7/addresses/"}, [2]string{calls[0].Method, calls[0].Path})
	assert.Equal(t, [2]string{http.MethodPut, "/users/7/addresses/3/"}, [2]string{calls[1].Method, calls[1].Path})
	assert.Equal(t, [2]string{http.MethodDelete, "/users/7/addresses/3/"}, [2]string{calls[2].Method, calls[2].Path})
	assert.Equal(t, [2]string{http.MethodPost, "/users/7/addresses/3/set_default/"}, [2]string{calls[3].Method, calls[3].Path})

	body := calls[0].JSON(t)
	assert.Equal(t, "Li", body["receiver"])
	assert.Equal(t, false, body["is_default"])
}

func TestNoUser(t *testing.T) {
	backend := clienttest.New(t)
	svc := NewService(backend.Client(t, nil), fixedUser{})
	ctx := context.Background()

	_, err := svc.List(ctx)
	assert.ErrorIs(t, err, ErrNoUser)
	_, err = svc.Create(ctx, Input{})
	assert.ErrorIs(t, err, ErrNoUser)
	_, err = svc.Update(ctx, 1, Input{})
	assert.ErrorIs(t, err, ErrNoUser)
	assert.ErrorIs(t, svc.Delete(ctx, 1), ErrNoUser)
	_, err = svc.SetDefault(ctx, 1)
	assert.ErrorIs(t, err, ErrNoUser)

	assert.Empty(t, backend.Calls())
}

func TestSessionManagerAsUserSource(t *testing.T) {
	backend := clienttest.New(t)
	backend.Respond(http.MethodGet, "/users/12/addresses/", http.StatusOK, `[]`)

	mgr := session.NewManager(session.NewMemoryStore())
	require.NoError(t, mgr.SetAuth(context.Background(), "t", &session.User{ID: 12}))
	svc := NewService(backend.Client(t, mgr), mgr)

	_, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer t", backend.Last(t).Header.Get("Authorization"))
}
