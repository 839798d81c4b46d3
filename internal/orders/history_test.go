package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendHistoryNeverOverwrites(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	h := AppendHistory(nil, StatusMenungguPembayaran, t0, "Pesanan dibuat")
	h = AppendHistory(h, StatusPembayaranVerifikasi, t0.Add(time.Hour), "")
	// mundur ke status yang pernah dikunjungi: entry baru, bukan update
	h = AppendHistory(h, StatusMenungguPembayaran, t0.Add(2*time.Hour), "Verifikasi ditolak")

	require.Len(t, h, 3)
	assert.Equal(t, StatusMenungguPembayaran, h[0].Status)
	assert.Equal(t, t0, h[0].Timestamp)
	assert.Equal(t, StatusMenungguPembayaran, h[2].Status)
	assert.Equal(t, t0.Add(2*time.Hour), h[2].Timestamp)

	last, ok := LastEntry(h)
	require.True(t, ok)
	assert.Equal(t, "Verifikasi ditolak", last.Description)
}

func TestLastEntryEmpty(t *testing.T) {
	_, ok := LastEntry(nil)
	assert.False(t, ok)
}

func TestHistoryFromLegacyMap(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	legacy := map[string]time.Time{
		string(StatusPesananDiterima):      t0.Add(2 * time.Hour),
		string(StatusMenungguPembayaran):   t0,
		string(StatusPembayaranVerifikasi): t0.Add(time.Hour),
	}

	h := HistoryFromLegacyMap(legacy)
	require.Len(t, h, 3)
	assert.Equal(t, StatusMenungguPembayaran, h[0].Status)
	assert.Equal(t, StatusPembayaranVerifikasi, h[1].Status)
	assert.Equal(t, StatusPesananDiterima, h[2].Status)

	assert.Nil(t, HistoryFromLegacyMap(nil))
}
