package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokadesain/orderflow/internal/apperr"
)

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusMenungguPembayaran.Valid())
	assert.True(t, StatusDibatalkan.Valid())
	assert.False(t, Status("SHIPPED").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusPesananSelesai.Terminal())
	assert.True(t, StatusDibatalkan.Terminal())
	assert.False(t, StatusDesainDikerjakan.Terminal())
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusMenungguPembayaran, StatusPembayaranVerifikasi, true},
		{StatusMenungguPembayaran, StatusDibatalkan, true},
		{StatusMenungguPembayaran, StatusPesananSelesai, false},
		// verifikasi ditolak: boleh mundur
		{StatusPembayaranVerifikasi, StatusMenungguPembayaran, true},
		{StatusPembayaranVerifikasi, StatusPesananDiterima, true},
		{StatusPesananDiterima, StatusBriefDitinjau, true},
		{StatusBriefDitinjau, StatusDesainDikerjakan, true},
		{StatusDesainDikerjakan, StatusPesananSelesai, true},
		// terminal: tidak ada jalan keluar
		{StatusPesananSelesai, StatusMenungguPembayaran, false},
		{StatusDibatalkan, StatusMenungguPembayaran, false},
		// tidak boleh loncat
		{StatusMenungguPembayaran, StatusDesainDikerjakan, false},
	}
	for _, c := range cases {
		assert.Equalf(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestMachineStrict(t *testing.T) {
	m := Machine{Strict: true}

	require.NoError(t, m.Check(StatusMenungguPembayaran, StatusPembayaranVerifikasi))

	err := m.Check(StatusMenungguPembayaran, StatusPesananSelesai)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindIllegalTransition))

	// target di luar enum selalu ditolak sebagai validation
	err = m.Check(StatusMenungguPembayaran, Status("SHIPPED"))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// same-status = no-op, bukan error
	require.NoError(t, m.Check(StatusPesananDiterima, StatusPesananDiterima))
}

func TestMachineLenient(t *testing.T) {
	m := Machine{Strict: false}

	// transisi ilegal dibiarkan lewat, hanya keanggotaan enum yang dicek
	require.NoError(t, m.Check(StatusMenungguPembayaran, StatusPesananSelesai))

	err := m.Check(StatusMenungguPembayaran, Status("SHIPPED"))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
