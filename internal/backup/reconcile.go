package backup

import "disk-backup/internal/domain"

// Annotate marks each local file that is an exact member of the inventory.
// Local order is preserved.
func Annotate(local []string, inv domain.Inventory) []domain.FileEntry {
	entries := make([]domain.FileEntry, len(local))
	for i, name := range local {
		entries[i] = domain.FileEntry{
			Name:     name,
			Uploaded: inv.Contains(name),
		}
	}
	return entries
}
