package normalizer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"meeting_sync/internal/domain"
)

// Shared file: notes.pdf (https://host/notes.pdf)
var sharedFileLine = regexp.MustCompile(`(?i)^shared file:\s*(.+?)\s*\((https?://[^\s)]+)\)\s*$`)

// Chat stores chat lines deduplicated by content hash and records files
// shared through the chat.
func (n *Normalizer) Chat(ctx context.Context, m *domain.Meeting, lines []domain.RawChatLine) domain.DomainResult {
	t := newTally(domain.DomainChat, len(lines))
	mc := matchContext(m)
	seen := make(map[string]struct{}, len(lines))

	for _, line := range lines {
		text := strings.TrimSpace(line.Text)
		if text == "" && len(line.Attachments) == 0 {
			continue
		}
		if text == "" {
			text = attachmentNames(line.Attachments)
		}

		sender := strings.TrimSpace(line.SenderName)
		hash := domain.ChatContentHash(sender, text)
		if _, dup := seen[hash]; dup {
			continue
		}
		seen[hash] = struct{}{}

		shared := sharedFiles(line, text)
		msgType := domain.MessageText
		switch {
		case line.System:
			msgType = domain.MessageSystem
		case len(shared) > 0:
			msgType = domain.MessageFile
		}

		match := domain.Unmatched()
		if msgType != domain.MessageSystem && sender != "" {
			var err error
			match, err = n.resolver.Resolve(ctx, domain.Descriptor{
				Name:           sender,
				Email:          line.SenderEmail,
				PlatformUserID: line.SenderID,
			}, mc)
			if err != nil {
				n.logger.Warn("failed to resolve chat sender", "meeting_id", m.ID, "sender", sender, "error", err)
				match = domain.Unmatched()
			}
		}

		md := domain.Metadata{}
		if line.MessageID != "" {
			md["platform_message_id"] = line.MessageID
		}
		if line.SenderID != "" {
			md["platform_sender_id"] = line.SenderID
		}
		if line.SenderEmail != "" {
			md["sender_email"] = line.SenderEmail
		}
		msg := &domain.ChatMessage{
			MeetingID:   m.ID,
			ContentHash: hash,
			SenderName:  sender,
			MessageText: text,
			MessageType: msgType,
			SentAt:      timePtr(line.SentAt),
			Metadata:    match.Annotate(md),
		}
		if match.Matched() {
			msg.SenderID = &match.User.ID
		}

		err := n.guard.Run(ctx, "upsert chat message", func(ctx context.Context) error {
			return n.stores.Chat.Upsert(ctx, msg)
		})
		if err != nil {
			n.logger.Warn("failed to store chat message", "meeting_id", m.ID, "error", err)
			t.failed(1, err)
			continue
		}
		t.ok(1)

		for _, f := range shared {
			f.MeetingID = m.ID
			f.SharedByID = msg.SenderID
			if err := n.storeFile(ctx, f); err != nil {
				t.failed(1, err)
			}
		}
	}

	return t.done()
}

func attachmentNames(files []domain.RawFile) string {
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return "Shared file: " + strings.Join(names, ", ")
}

// sharedFiles collects files attached to a chat line or announced in its text.
func sharedFiles(line domain.RawChatLine, text string) []*domain.SharedFile {
	var out []*domain.SharedFile
	for _, a := range line.Attachments {
		if a.Name == "" {
			continue
		}
		out = append(out, &domain.SharedFile{
			Filename:      a.Name,
			SharedByName:  strings.TrimSpace(line.SenderName),
			FileURL:       ptr(a.URL),
			FileSizeBytes: a.Size,
			ContentType:   ptr(a.ContentType),
			Source:        domain.FileFromChat,
			SharedAt:      timePtr(line.SentAt),
		})
	}
	for _, l := range strings.Split(text, "\n") {
		m := sharedFileLine.FindStringSubmatch(strings.TrimSpace(l))
		if m == nil {
			continue
		}
		out = append(out, &domain.SharedFile{
			Filename:     m[1],
			SharedByName: strings.TrimSpace(line.SenderName),
			FileURL:      ptr(m[2]),
			Source:       domain.FileFromChat,
			SharedAt:     timePtr(line.SentAt),
		})
	}
	return out
}

// RematchChat fills in senders for messages stored without one. Assigned
// senders are never overwritten.
func (n *Normalizer) RematchChat(ctx context.Context, m *domain.Meeting) domain.DomainResult {
	t := newTally(domain.DomainChat, 1)

	messages, err := n.stores.Chat.ListUnmatched(ctx, m.ID)
	if err != nil {
		t.result.Fail(fmt.Errorf("list unmatched chat: %w", err))
		return t.result
	}
	t.result.NoData = len(messages) == 0

	mc := matchContext(m)
	for _, msg := range messages {
		if msg.SenderName == "" {
			continue
		}
		match, err := n.resolver.Resolve(ctx, domain.Descriptor{
			Name:           msg.SenderName,
			Email:          msg.Metadata.String("sender_email"),
			PlatformUserID: msg.Metadata.String("platform_sender_id"),
		}, mc)
		if err != nil {
			t.failed(1, err)
			continue
		}
		if !match.Matched() {
			continue
		}

		md := domain.Metadata{}
		for k, v := range msg.Metadata {
			md[k] = v
		}
		md = match.Annotate(md)

		var assigned bool
		err = n.guard.Run(ctx, "assign chat sender", func(ctx context.Context) error {
			var err error
			assigned, err = n.stores.Chat.AssignSender(ctx, msg.ID, match.User.ID, md)
			return err
		})
		if err != nil {
			t.failed(1, err)
			continue
		}
		if assigned {
			t.ok(1)
		}
	}
	return t.done()
}
