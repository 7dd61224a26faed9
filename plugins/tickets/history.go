package tickets

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-xorm/xorm"
	"github.com/sirupsen/logrus"
)

// TicketMention is the xorm model recording the last announcement of a
// ticket in a channel.
type TicketMention struct {
	ID       int64
	Channel  string
	Provider string
	Ticket   string
	Title    string
	Time     time.Time
}

type history struct {
	db     *xorm.Engine
	logger *logrus.Entry
}

func newHistory(db *xorm.Engine, logger *logrus.Entry) (*history, error) {
	err := db.Sync(TicketMention{})
	if err != nil {
		return nil, err
	}

	return &history{db: db, logger: logger}, nil
}

func (h *history) record(rawChannel, provider, ticket, title string) {
	search := TicketMention{
		Channel:  strings.ToLower(rawChannel),
		Provider: provider,
		Ticket:   ticket,
	}

	_, err := h.db.Transaction(func(s *xorm.Session) (interface{}, error) {
		found, _ := s.Get(&search)

		search.Title = title
		search.Time = time.Now()

		if !found {
			return s.Insert(search)
		}

		return s.ID(search.ID).Update(search)
	})

	if err != nil {
		h.logger.WithError(err).Warnf("Failed to record mention of %s in %s", ticket, rawChannel)
	}
}

// lastMention reports the most recent announcement per provider. Several
// providers can announce the same ticket number in one channel, so the
// answer carries the provider name and covers every match.
func (h *history) lastMention(rawChannel, ticket string) string {
	var mentions []TicketMention

	err := h.db.Where("channel = ? AND ticket = ?", strings.ToLower(rawChannel), ticket).
		Desc("time").Find(&mentions)
	if err != nil || len(mentions) == 0 {
		return ticket + " has not been mentioned in " + rawChannel
	}

	var lines []string
	for _, m := range mentions {
		lines = append(lines, fmt.Sprintf("%s was last mentioned in %s on %s at %s by %s: %s",
			ticket, rawChannel, formatDate(m.Time), formatTime(m.Time), m.Provider, m.Title))
	}

	return strings.Join(lines, "\n")
}

func formatTime(t time.Time) string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

func formatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), t.Month().String(), t.Year())
}
