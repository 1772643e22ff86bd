package enrich

import (
	"github.com/matheus3301/wppmcp/internal/model"
	"go.uber.org/zap"
)

// Enricher applies read-time derivations to store rows and reports JIDs
// whose server suffix it does not recognise.
type Enricher struct {
	logger *zap.Logger
}

// New creates an Enricher. A nil logger disables anomaly reporting.
func New(logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{logger: logger}
}

// IsGroup classifies jid. Unrecognised suffixes are treated as individual
// chats and logged.
func (e *Enricher) IsGroup(jid string) bool {
	group, known := ClassifyJID(jid)
	if !known {
		e.logger.Warn("unrecognised jid suffix, treating as individual", zap.String("jid", jid))
	}
	return group
}

// ChatType returns model.ChatTypeGroup or model.ChatTypeIndividual.
func (e *Enricher) ChatType(jid string) string {
	if e.IsGroup(jid) {
		return model.ChatTypeGroup
	}
	return model.ChatTypeIndividual
}

// Message fills the derived message fields in place.
func (e *Enricher) Message(m *model.Message) {
	m.IsGroup = e.IsGroup(m.ChatJID)
	m.CharacterCount = model.Int(CharacterCount(m.Content))
	m.WordCount = model.Int(WordCount(m.Content))
	m.URLList = ExtractURLs(m.Content)
	m.Mentions = ExtractMentions(m.Content)
}

// Chat fills the chat classification in place.
func (e *Enricher) Chat(c *model.Chat) {
	c.IsGroup = e.IsGroup(c.JID)
	c.ChatType = model.ChatTypeIndividual
	if c.IsGroup {
		c.ChatType = model.ChatTypeGroup
	}
}
