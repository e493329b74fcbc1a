package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appreturns "github.com/retailops/backoffice/internal/application/returns"
	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/interfaces/http/dto"
	"github.com/retailops/backoffice/internal/testutil"
)

func TestReturnHandler_Lifecycle(t *testing.T) {
	api := newTestAPI(t)
	item := api.createItem(t, "Speaker", 10, "80", "50")
	inv := api.createInvoice(t, map[uuid.UUID]int{item: 3}, "80")
	require.Equal(t, 7, api.quantity(t, item))

	request := map[string]any{
		"invoice_id": inv.ID,
		"items": []map[string]any{
			{"inventory_item_id": item, "quantity": 2, "refund_amount": "160"},
		},
		"reason": "defective",
	}

	w := api.do(t, identity.RoleStaff, http.MethodPost, "/returns", request)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := testutil.DecodeData[appreturns.ReturnResponse](t, w)
	assert.Equal(t, "Pending", created.Status)
	assert.Equal(t, 7, api.quantity(t, item))

	t.Run("over-claim refused", func(t *testing.T) {
		w := api.do(t, identity.RoleStaff, http.MethodPost, "/returns", request)
		testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})

	t.Run("staff cannot approve", func(t *testing.T) {
		w := api.do(t, identity.RoleStaff, http.MethodPost, "/returns/"+created.ID.String()+"/approve", nil)
		testutil.AssertErrorCode(t, w, http.StatusForbidden, dto.ErrCodePermissionDenied)
	})

	w = api.do(t, identity.RoleAdmin, http.MethodPost, "/returns/"+created.ID.String()+"/approve", map[string]any{"note": "checked"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Approved", testutil.DecodeData[appreturns.ReturnResponse](t, w).Status)
	assert.Equal(t, 9, api.quantity(t, item))

	t.Run("decided return cannot be rejected", func(t *testing.T) {
		w := api.do(t, identity.RoleAdmin, http.MethodPost, "/returns/"+created.ID.String()+"/reject", nil)
		testutil.AssertErrorCode(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
	})

	w = api.do(t, identity.RoleStaff, http.MethodGet, "/returns?status=Approved&invoice_id="+inv.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	list := testutil.DecodeData[[]appreturns.ReturnResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	w = api.do(t, identity.RoleStaff, http.MethodGet, "/returns/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.Number, testutil.DecodeData[appreturns.ReturnResponse](t, w).Number)
}

func TestReturnHandler_Reject(t *testing.T) {
	api := newTestAPI(t)
	item := api.createItem(t, "Cable", 5, "10", "4")
	inv := api.createInvoice(t, map[uuid.UUID]int{item: 1}, "10")

	w := api.do(t, identity.RoleOwner, http.MethodPost, "/returns", map[string]any{
		"invoice_id": inv.ID,
		"items":      []map[string]any{{"inventory_item_id": item, "quantity": 1, "refund_amount": "10"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := testutil.DecodeData[appreturns.ReturnResponse](t, w)

	w = api.do(t, identity.RoleOwner, http.MethodPost, "/returns/"+created.ID.String()+"/reject", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Rejected", testutil.DecodeData[appreturns.ReturnResponse](t, w).Status)
	assert.Equal(t, 4, api.quantity(t, item))
}
