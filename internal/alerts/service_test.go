package alerts

import (
	"context"
	"testing"

	"github.com/prodataworld/prodata-backend/pkg/db/dbtest"
	"github.com/prodataworld/prodata-backend/pkg/db/models"
	"github.com/stretchr/testify/require"
)

func TestListActiveSkipsInactiveAlerts(t *testing.T) {
	conn := dbtest.Open(t)
	require.NoError(t, conn.Create(&models.Alert{Title: "Maintenance", Message: "MTN delays tonight", IsActive: true}).Error)
	hidden := models.Alert{Title: "Old", Message: "resolved", IsActive: true}
	require.NoError(t, conn.Create(&hidden).Error)
	require.NoError(t, conn.Model(&hidden).Update("is_active", false).Error)
	require.NoError(t, conn.Create(&models.Alert{Title: "Promo", Message: "Ishare bonus", IsActive: true}).Error)

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	rows, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Promo", rows[0].Title)
	require.Equal(t, "Maintenance", rows[1].Title)
}

func TestListActiveEmpty(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)

	rows, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}
