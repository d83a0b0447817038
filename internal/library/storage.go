package library

import (
	"context"

	"golang.org/x/sys/unix"

	"longbox/internal/logging"
)

// Estimate is an advisory storage accounting snapshot: bytes the library
// holds and the capacity of the filesystem backing the data directory.
type Estimate struct {
	UsedBytes  uint64 `json:"usedBytes"`
	QuotaBytes uint64 `json:"quotaBytes"`
}

// StorageEstimate reports library usage and host capacity. Quota is
// best-effort: when the filesystem cannot be inspected the estimate
// carries usage only.
func (s *Service) StorageEstimate(ctx context.Context) (Estimate, error) {
	stats, err := s.store.StorageBytes(ctx)
	if err != nil {
		return Estimate{}, err
	}

	estimate := Estimate{UsedBytes: uint64(stats.Total())}

	var fs unix.Statfs_t
	if err := unix.Statfs(s.cfg.Paths.DataDir, &fs); err != nil {
		s.logger.Warn("filesystem inspection failed", logging.Error(err))
		return estimate, nil
	}
	estimate.QuotaBytes = fs.Blocks * uint64(fs.Bsize)
	return estimate, nil
}
