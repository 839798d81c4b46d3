package orders

import "github.com/lokadesain/orderflow/internal/apperr"

// Status adalah enum tertutup. Nilai string harus round-trip bit-exact
// lewat wire; jangan diubah tanpa migrasi data.
type Status string

const (
	StatusMenungguPembayaran   Status = "Menunggu Pembayaran"
	StatusPembayaranVerifikasi Status = "Pembayaran Sedang Diverifikasi"
	StatusPesananDiterima      Status = "Pesanan Diterima"
	StatusBriefDitinjau        Status = "Brief Sedang Ditinjau"
	StatusDesainDikerjakan     Status = "Desain Sedang Dikerjakan"
	StatusPesananSelesai       Status = "Pesanan Selesai"
	StatusDibatalkan           Status = "Dibatalkan"
)

func (s Status) String() string { return string(s) }

// StatusInitial adalah status awal setiap order baru.
const StatusInitial = StatusMenungguPembayaran

var allStatuses = map[Status]bool{
	StatusMenungguPembayaran:   true,
	StatusPembayaranVerifikasi: true,
	StatusPesananDiterima:      true,
	StatusBriefDitinjau:        true,
	StatusDesainDikerjakan:     true,
	StatusPesananSelesai:       true,
	StatusDibatalkan:           true,
}

func (s Status) Valid() bool { return allStatuses[s] }

func (s Status) Terminal() bool {
	return s == StatusPesananSelesai || s == StatusDibatalkan
}

// validNext: tabel transisi legal, satu-satunya sumber kebenaran.
// Pembayaran Sedang Diverifikasi boleh mundur ke Menunggu Pembayaran
// (verifikasi ditolak admin).
var validNext = map[Status]map[Status]bool{
	StatusMenungguPembayaran: {
		StatusPembayaranVerifikasi: true,
		StatusDibatalkan:           true,
	},
	StatusPembayaranVerifikasi: {
		StatusPesananDiterima:    true,
		StatusMenungguPembayaran: true,
		StatusDibatalkan:         true,
	},
	StatusPesananDiterima: {
		StatusBriefDitinjau: true,
		StatusDibatalkan:    true,
	},
	StatusBriefDitinjau: {
		StatusDesainDikerjakan: true,
		StatusDibatalkan:       true,
	},
	StatusDesainDikerjakan: {
		StatusPesananSelesai: true,
		StatusDibatalkan:     true,
	},
	StatusPesananSelesai: {},
	StatusDibatalkan:     {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Machine memeriksa transisi di satu boundary. Strict = tabel transisi
// ditegakkan; non-strict = perilaku lama (cukup anggota enum), dipakai
// hanya untuk kompatibilitas.
type Machine struct {
	Strict bool
}

// Check menolak target non-enum dengan ValidationError dan transisi
// ilegal (mode strict) dengan IllegalTransition.
func (m Machine) Check(from, to Status) error {
	if !to.Valid() {
		return apperr.Validationf("Status %q tidak valid.", string(to))
	}
	if !m.Strict {
		return nil
	}
	if from == to {
		// no-op transition, biarkan caller yang memutuskan
		return nil
	}
	if !CanTransition(from, to) {
		return apperr.IllegalTransition(string(from), string(to))
	}
	return nil
}
