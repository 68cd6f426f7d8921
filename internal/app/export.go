package service

import (
	"context"
	"fmt"
	"io"
)

// Export writes the stored log byte for byte.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}
	raw, err := s.get(ctx, s.keys.Events)
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("export log: %w", err)
	}
	return nil
}
