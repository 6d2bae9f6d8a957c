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

func TestResolver_Resolve(t *testing.T) {
	type testCase struct {
		name      string
		code      string
		setupMock func(gw *movement.MockGateway)
		wantID    string
		wantErr   error
	}

	transportErr := errors.New("connection refused")

	tests := []testCase{
		{
			name:      "EmptyCodeIsSilentNoop",
			code:      "   ",
			setupMock: func(_ *movement.MockGateway) {},
		},
		{
			name: "TrimsBeforeLookup",
			code: "  123\n",
			setupMock: func(gw *movement.MockGateway) {
				gw.EXPECT().
					LookupProduct(gomock.Any(), "123").
					Return(&movement.Product{ID: "prod-7", Name: "Copper wire 2mm"}, nil)
			},
			wantID: "prod-7",
		},
		{
			name: "UnknownCode",
			code: "999999",
			setupMock: func(gw *movement.MockGateway) {
				gw.EXPECT().
					LookupProduct(gomock.Any(), "999999").
					Return(nil, movement.ErrProductNotFound)
			},
			wantErr: movement.ErrProductNotFound,
		},
		{
			name: "TransportFaultIsNotNotFound",
			code: "123",
			setupMock: func(gw *movement.MockGateway) {
				gw.EXPECT().
					LookupProduct(gomock.Any(), "123").
					Return(nil, transportErr)
			},
			wantErr: transportErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			gw := movement.NewMockGateway(ctrl)
			tt.setupMock(gw)

			r := movement.NewResolver(gw)
			p, err := r.Resolve(context.Background(), tt.code)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if errors.Is(tt.wantErr, movement.ErrProductNotFound) {
					assert.NotErrorIs(t, err, transportErr)
				}

				return
			}

			require.NoError(t, err)

			if tt.wantID == "" {
				assert.Nil(t, p)
				return
			}

			require.NotNil(t, p)
			assert.Equal(t, tt.wantID, p.ID)
		})
	}
}
