package normalizer

import (
	"context"
	"fmt"
	"strings"

	"meeting_sync/internal/domain"
)

func (n *Normalizer) Recordings(ctx context.Context, m *domain.Meeting, raws []domain.RawRecording) domain.DomainResult {
	t := newTally(domain.DomainRecordings, len(raws))

	for _, raw := range raws {
		if raw.RecordingID == "" {
			t.failed(1, domain.NewError(domain.KindPermanent, "normalize recording", fmt.Errorf("recording without id")))
			continue
		}
		status := raw.Status
		if status == "" {
			status = domain.RecordingProcessing
		}
		rec := &domain.Recording{
			MeetingID:           m.ID,
			PlatformRecordingID: raw.RecordingID,
			RecordingType:       strings.ToLower(raw.Type),
			FileURL:             ptr(raw.FileURL),
			DownloadURL:         ptr(raw.DownloadURL),
			DurationSeconds:     raw.DurationSeconds,
			FileSizeBytes:       raw.FileSize,
			Status:              status,
			RecordedAt:          timePtr(raw.StartedAt),
		}
		err := n.guard.Run(ctx, "upsert recording", func(ctx context.Context) error {
			return n.stores.Recordings.Upsert(ctx, rec)
		})
		if err != nil {
			n.logger.Warn("failed to store recording", "meeting_id", m.ID, "recording", raw.RecordingID, "error", err)
			t.failed(1, err)
			continue
		}
		t.ok(1)
	}
	return t.done()
}

// Files stores files listed by the platform, resolving who shared them.
func (n *Normalizer) Files(ctx context.Context, m *domain.Meeting, raws []domain.RawFile) domain.DomainResult {
	t := newTally(domain.DomainFiles, len(raws))
	mc := matchContext(m)

	for _, raw := range raws {
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			t.failed(1, domain.NewError(domain.KindPermanent, "normalize file", fmt.Errorf("file without name")))
			continue
		}
		f := &domain.SharedFile{
			MeetingID:     m.ID,
			Filename:      name,
			SharedByName:  strings.TrimSpace(raw.SharedByName),
			FileURL:       ptr(raw.URL),
			FileSizeBytes: raw.Size,
			ContentType:   ptr(raw.ContentType),
			Source:        domain.FileFromPlatform,
			SharedAt:      timePtr(raw.SharedAt),
		}
		if f.SharedByName != "" || raw.SharedByEmail != "" {
			match, err := n.resolver.Resolve(ctx, domain.Descriptor{Name: f.SharedByName, Email: raw.SharedByEmail}, mc)
			if err != nil {
				n.logger.Warn("failed to resolve file sharer", "meeting_id", m.ID, "file", name, "error", err)
			} else if match.Matched() {
				f.SharedByID = &match.User.ID
			}
		}
		if err := n.storeFile(ctx, f); err != nil {
			t.failed(1, err)
			continue
		}
		t.ok(1)
	}
	return t.done()
}

func (n *Normalizer) storeFile(ctx context.Context, f *domain.SharedFile) error {
	err := n.guard.Run(ctx, "upsert shared file", func(ctx context.Context) error {
		return n.stores.Files.Upsert(ctx, f)
	})
	if err != nil {
		n.logger.Warn("failed to store shared file", "meeting_id", f.MeetingID, "file", f.Filename, "error", err)
	}
	return err
}
