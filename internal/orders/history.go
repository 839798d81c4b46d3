package orders

import (
	"sort"
	"time"
)

// AppendHistory menambahkan entry baru di ekor timeline. Entry lama tidak
// pernah ditimpa: mengunjungi ulang status yang sama menghasilkan entry
// tambahan, bukan update timestamp.
func AppendHistory(h []StatusEntry, status Status, ts time.Time, desc string) []StatusEntry {
	return append(h, StatusEntry{Status: status, Timestamp: ts, Description: desc})
}

// LastEntry mengembalikan entry terakhir, ok=false kalau kosong.
func LastEntry(h []StatusEntry) (StatusEntry, bool) {
	if len(h) == 0 {
		return StatusEntry{}, false
	}
	return h[len(h)-1], true
}

// HistoryFromLegacyMap mengkonversi bentuk lama (map status -> timestamp
// terakhir) ke log terurut. Informasi kunjungan berulang sudah hilang di
// bentuk map; hasil konversi diurutkan berdasarkan timestamp naik.
func HistoryFromLegacyMap(legacy map[string]time.Time) []StatusEntry {
	if len(legacy) == 0 {
		return nil
	}
	entries := make([]StatusEntry, 0, len(legacy))
	for name, ts := range legacy {
		entries = append(entries, StatusEntry{Status: Status(name), Timestamp: ts})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries
}
