package movement_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bekzodm/omborscan/internal/movement"
)

func testProduct() *movement.Product {
	return &movement.Product{
		ID:       "prod-7",
		Name:     "Copper wire 2mm",
		SKU:      "CW-002",
		Unit:     "m",
		StockQty: 10,
	}
}

func TestController_AddItem_CreatesMovementLazilyOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := movement.NewMockGateway(ctrl)
	c := movement.NewController(gw, movement.KindIn)

	gw.EXPECT().
		CreateMovement(gomock.Any(), movement.KindIn, "").
		Return("mv-1", nil).
		Times(1)
	gw.EXPECT().
		AddItem(gomock.Any(), "mv-1", "prod-7", 1, 0.0).
		Return(&movement.AddReceipt{ItemID: "item-1", TotalQuantity: 1}, nil)
	gw.EXPECT().
		AddItem(gomock.Any(), "mv-1", "prod-7", 2, 0.0).
		Return(&movement.AddReceipt{ItemID: "item-1", TotalQuantity: 3}, nil)

	out, err := c.AddItem(context.Background(), testProduct(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "item-1", out.Line.ItemID)
	assert.Equal(t, 1, out.Line.Quantity)

	// Second add for the same product must reuse the movement and take the
	// server total instead of summing locally.
	out, err = c.AddItem(context.Background(), testProduct(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Line.Quantity)

	snap := c.Snapshot()
	assert.Equal(t, "mv-1", snap.MovementID)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 3, snap.Lines[0].Quantity)
}

func TestController_AddItem_RejectsNonPositiveQuantity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No expectations: a rejected quantity must never reach the gateway.
	gw := movement.NewMockGateway(ctrl)
	c := movement.NewController(gw, movement.KindIn)

	for _, qty := range []int{0, -3} {
		_, err := c.AddItem(context.Background(), testProduct(), qty, 0)

		var verr *movement.ValidationError
		require.ErrorAs(t, err, &verr)
	}

	assert.Empty(t, c.Snapshot().Lines)
}

func TestController_AddItem_DistinctProductsGetDistinctLines(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := movement.NewMockGateway(ctrl)
	c := movement.NewController(gw, movement.KindIn)

	gw.EXPECT().CreateMovement(gomock.Any(), movement.KindIn, "").Return("mv-1", nil)
	gw.EXPECT().
		AddItem(gomock.Any(), "mv-1", "prod-7", 1, 0.0).
		Return(&movement.AddReceipt{ItemID: "item-1", TotalQuantity: 1}, nil)
	gw.EXPECT().
		AddItem(gomock.Any(), "mv-1", "prod-8", 4, 2.5).
		Return(&movement.AddReceipt{ItemID: "item-2", TotalQuantity: 4}, nil)

	_, err := c.AddItem(context.Background(), testProduct(), 1, 0)
	require.NoError(t, err)

	other := &movement.Product{ID: "prod-8", Name: "Screws M4", SKU: "SC-004", Unit: "pcs", StockQty: 500}
	_, err = c.AddItem(context.Background(), other, 4, 2.5)
	require.NoError(t, err)

	snap := c.Snapshot()
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, "item-2", snap.Lines[1].ItemID)
	assert.Equal(t, 2.5, snap.Lines[1].UnitPrice)
}

func TestController_AddItem_KeepsMovementRefWhenAddFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := movement.NewMockGateway(ctrl)
	c := movement.NewController(gw, movement.KindIn)

	gw.EXPECT().
		CreateMovement(gomock.Any(), movement.KindIn, "").
		Return("mv-1", nil).
		Times(1)
	gw.EXPECT().
		AddItem(gomock.Any(), "mv-1", "prod-7", 1, 0.0).
		Return(nil, errors.New("boom"))
	gw.EXPECT().
		AddItem(gomock.Any(), "mv-1", "prod-7", 1, 0.0).
		Return(&movement.AddReceipt{ItemID: "item-1", TotalQuantity: 1}, nil)

	_, err := c.AddItem(context.Background(), testProduct(), 1, 0)
	require.Error(t, err)
	assert.Empty(t, c.Snapshot().Lines)
	assert.Equal(t, "mv-1", c.Snapshot().MovementID)

	// Retry must reuse the movement created the first time around.
	out, err := c.AddItem(context.Background(), testProduct(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Line.Quantity)
}

func TestController_AddItem_StockWarning(t *testing.T) {
	type testCase struct {
		name        string
		kind        movement.Kind
		ignoreStock bool
		quantity    int
		wantWarning bool
	}

	tests := []testCase{
		{name: "OutboundAboveStock", kind: movement.KindOut, quantity: 20, wantWarning: true},
		{name: "OutboundWithinStock", kind: movement.KindOut, quantity: 5, wantWarning: false},
		{name: "OutboundIgnoreStock", kind: movement.KindOut, ignoreStock: true, quantity: 20, wantWarning: false},
		{name: "InboundAboveStock", kind: movement.KindIn, quantity: 20, wantWarning: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			gw := movement.NewMockGateway(ctrl)
			c := movement.NewController(gw, tt.kind)
			c.SetIgnoreStock(tt.ignoreStock)

			// The warning is advisory: the request goes out regardless.
			gw.EXPECT().CreateMovement(gomock.Any(), tt.kind, "").Return("mv-1", nil)
			gw.EXPECT().
				AddItem(gomock.Any(), "mv-1", "prod-7", tt.quantity, 0.0).
				Return(&movement.AddReceipt{ItemID: "item-1", TotalQuantity: tt.quantity}, nil)

			p := testProduct()
			p.StockQty = 5

			out, err := c.AddItem(context.Background(), p, tt.quantity, 0)
			require.NoError(t, err)

			if tt.wantWarning {
				assert.NotEmpty(t, out.StockWarning)
			} else {
				assert.Empty(t, out.StockWarning)
			}
		})
	}
}

func TestController_Finalize_GuardChecksAreLocal(t *testing.T) {
	type testCase struct {
		name       string
		setup      func(c *movement.Controller, gw *movement.MockGateway)
		wantReason string
	}

	tests := []testCase{
		{
			name:       "NoMovement",
			setup:      func(_ *movement.Controller, _ *movement.MockGateway) {},
			wantReason: "no movement to finalize",
		},
		{
			name: "NoItems",
			setup: func(c *movement.Controller, _ *movement.MockGateway) {
				c.Resume("mv-1", "", nil)
			},
			wantReason: "movement has no items",
		},
		{
			name: "NotVerified",
			setup: func(c *movement.Controller, _ *movement.MockGateway) {
				c.Resume("mv-1", "", []movement.Line{
					{ItemID: "item-1", ProductID: "prod-7", Quantity: 2},
					{ItemID: "item-2", ProductID: "prod-8", Quantity: 1},
				})
			},
			wantReason: "face verification required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// No gateway expectations: a failed guard never produces a call.
			gw := movement.NewMockGateway(ctrl)
			c := movement.NewController(gw, movement.KindOut)
			tt.setup(c, gw)

			_, err := c.Finalize(context.Background())

			var verr *movement.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantReason, verr.Reason)
		})
	}
}

func TestController_Finalize_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := movement.NewMockGateway(ctrl)
	c := movement.NewController(gw, movement.KindIn)
	c.Resume("mv-1", "", []movement.Line{{ItemID: "item-1", ProductID: "prod-7", Quantity: 1}})
	c.SetVerified("Aziza Karimova", 0.93)

	gw.EXPECT().Finalize(gomock.Any(), "mv-1").Return("movement completed", nil)

	msg, err := c.Finalize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "movement completed", msg)

	snap := c.Snapshot()
	assert.Equal(t, movement.StatusFinalized, snap.Status)
	assert.False(t, snap.FinalizeEnabled)
}

func TestController_Finalize_RemoteFailureIsRetryable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := movement.NewMockGateway(ctrl)
	c := movement.NewController(gw, movement.KindIn)
	c.Resume("mv-1", "", []movement.Line{{ItemID: "item-1", ProductID: "prod-7", Quantity: 1}})
	c.SetVerified("Aziza Karimova", 0.93)

	gw.EXPECT().Finalize(gomock.Any(), "mv-1").Return("", errors.New("ledger busy"))
	gw.EXPECT().Finalize(gomock.Any(), "mv-1").Return("done", nil)

	_, err := c.Finalize(context.Background())
	require.Error(t, err)

	snap := c.Snapshot()
	assert.Equal(t, movement.StatusDraft, snap.Status)
	assert.True(t, snap.FinalizeEnabled, "gate must stay exactly as it was")

	_, err = c.Finalize(context.Background())
	require.NoError(t, err)
}

func TestController_FinalizeEnabled_TracksEveryTransition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := movement.NewMockGateway(ctrl)
	c := movement.NewController(gw, movement.KindIn)

	assert.False(t, c.Snapshot().FinalizeEnabled)

	gw.EXPECT().CreateMovement(gomock.Any(), movement.KindIn, "").Return("mv-1", nil)
	gw.EXPECT().
		AddItem(gomock.Any(), "mv-1", "prod-7", 1, 0.0).
		Return(&movement.AddReceipt{ItemID: "item-1", TotalQuantity: 1}, nil)

	_, err := c.AddItem(context.Background(), testProduct(), 1, 0)
	require.NoError(t, err)
	assert.False(t, c.Snapshot().FinalizeEnabled, "items alone are not enough")

	c.SetVerified("Aziza Karimova", 0.93)
	assert.True(t, c.Snapshot().FinalizeEnabled)

	gw.EXPECT().RemoveItem(gomock.Any(), "mv-1", "item-1").Return(nil)
	require.NoError(t, c.RemoveItem(context.Background(), "item-1"))
	assert.False(t, c.Snapshot().FinalizeEnabled, "empty list disables finalize again")
}

func TestController_RemoveItem(t *testing.T) {
	t.Run("NoMovementIsNoop", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		gw := movement.NewMockGateway(ctrl)
		c := movement.NewController(gw, movement.KindIn)

		require.NoError(t, c.RemoveItem(context.Background(), "item-1"))
	})

	t.Run("ServerFailureLeavesListUnchanged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		gw := movement.NewMockGateway(ctrl)
		c := movement.NewController(gw, movement.KindIn)
		c.Resume("mv-1", "", []movement.Line{{ItemID: "item-1", ProductID: "prod-7", Quantity: 2}})

		gw.EXPECT().RemoveItem(gomock.Any(), "mv-1", "item-9").Return(errors.New("item not found"))

		err := c.RemoveItem(context.Background(), "item-9")
		require.Error(t, err)
		assert.Len(t, c.Snapshot().Lines, 1)
	})

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		gw := movement.NewMockGateway(ctrl)
		c := movement.NewController(gw, movement.KindIn)
		c.Resume("mv-1", "", []movement.Line{{ItemID: "item-1", ProductID: "prod-7", Quantity: 2}})

		gw.EXPECT().RemoveItem(gomock.Any(), "mv-1", "item-1").Return(nil)

		require.NoError(t, c.RemoveItem(context.Background(), "item-1"))
		assert.Empty(t, c.Snapshot().Lines)
	})
}

func TestController_Cancel(t *testing.T) {
	t.Run("NothingToCancel", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		gw := movement.NewMockGateway(ctrl)
		c := movement.NewController(gw, movement.KindIn)

		err := c.Cancel(context.Background())
		assert.ErrorIs(t, err, movement.ErrNothingToCancel)
	})

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		gw := movement.NewMockGateway(ctrl)
		c := movement.NewController(gw, movement.KindIn)
		c.Resume("mv-1", "", nil)

		gw.EXPECT().Cancel(gomock.Any(), "mv-1").Return(nil)

		require.NoError(t, c.Cancel(context.Background()))
		assert.Equal(t, movement.StatusCancelled, c.Snapshot().Status)
	})
}

func TestController_StaleAddResponseIsIgnoredAfterCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := movement.NewMockGateway(ctrl)
	c := movement.NewController(gw, movement.KindIn)
	c.Resume("mv-1", "", nil)

	entered := make(chan struct{})
	release := make(chan struct{})

	gw.EXPECT().
		AddItem(gomock.Any(), "mv-1", "prod-7", 1, 0.0).
		DoAndReturn(func(context.Context, string, string, int, float64) (*movement.AddReceipt, error) {
			close(entered)
			<-release
			return &movement.AddReceipt{ItemID: "item-1", TotalQuantity: 1}, nil
		})
	gw.EXPECT().Cancel(gomock.Any(), "mv-1").Return(nil)

	errCh := make(chan error, 1)

	go func() {
		_, err := c.AddItem(context.Background(), testProduct(), 1, 0)
		errCh <- err
	}()

	<-entered
	require.NoError(t, c.Cancel(context.Background()))
	close(release)

	assert.ErrorIs(t, <-errCh, movement.ErrSuperseded)
	assert.Empty(t, c.Snapshot().Lines)
	assert.Equal(t, movement.StatusCancelled, c.Snapshot().Status)
}

func TestController_DiscardRestart(t *testing.T) {
	t.Run("OnlyForResumedMovements", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		gw := movement.NewMockGateway(ctrl)
		c := movement.NewController(gw, movement.KindOut)

		var verr *movement.ValidationError
		require.ErrorAs(t, c.DiscardRestart(context.Background()), &verr)
	})

	t.Run("ReplacesDraft", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		gw := movement.NewMockGateway(ctrl)
		c := movement.NewController(gw, movement.KindOut)
		c.Resume("mv-old", "", []movement.Line{{ItemID: "item-1", ProductID: "prod-7", Quantity: 2}})

		gw.EXPECT().DiscardPending(gomock.Any(), movement.KindOut).Return("mv-new", nil)

		require.NoError(t, c.DiscardRestart(context.Background()))

		snap := c.Snapshot()
		assert.Equal(t, "mv-new", snap.MovementID)
		assert.Empty(t, snap.Lines)
		assert.False(t, snap.Resumed)
		assert.Equal(t, movement.StatusDraft, snap.Status)
	})
}

func TestController_Resume_AppliesOnFreshController(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := movement.NewMockGateway(ctrl)
	c := movement.NewController(gw, movement.KindIn)

	ok := c.Resume("mv-1", "restock", []movement.Line{
		{ItemID: "item-1", ProductID: "prod-7", Quantity: 2},
	})
	require.True(t, ok)

	snap := c.Snapshot()
	assert.Equal(t, "mv-1", snap.MovementID)
	assert.True(t, snap.Resumed)
	require.Len(t, snap.Lines, 1)
}

func TestController_Resume_LateResultNeverClobbersLiveDraft(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := movement.NewMockGateway(ctrl)
	c := movement.NewController(gw, movement.KindIn)

	gw.EXPECT().
		CreateMovement(gomock.Any(), movement.KindIn, "").
		Return("mv-new", nil)
	gw.EXPECT().
		AddItem(gomock.Any(), "mv-new", "prod-7", 1, 0.0).
		Return(&movement.AddReceipt{ItemID: "item-1", TotalQuantity: 1}, nil)

	_, err := c.AddItem(context.Background(), testProduct(), 1, 0)
	require.NoError(t, err)

	// A slow pending-movement lookup that lands after the operator has
	// already scanned must not replace the live movement.
	ok := c.Resume("mv-stale", "", []movement.Line{
		{ItemID: "item-9", ProductID: "prod-9", Quantity: 5},
	})
	assert.False(t, ok)

	snap := c.Snapshot()
	assert.Equal(t, "mv-new", snap.MovementID)
	assert.False(t, snap.Resumed)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, "item-1", snap.Lines[0].ItemID)
}

func TestController_SetVerified_IsTerminal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := movement.NewMockGateway(ctrl)
	c := movement.NewController(gw, movement.KindIn)

	c.SetVerified("Aziza Karimova", 0.93)
	c.SetVerified("Someone Else", 0.51)

	snap := c.Snapshot()
	assert.True(t, snap.Verified)
	assert.Equal(t, "Aziza Karimova", snap.Operator)
	assert.Equal(t, 0.93, snap.Confidence)
}
