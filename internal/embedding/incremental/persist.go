package incremental

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"segembed/internal/embedding/tfidf"
	"segembed/internal/tokenizer"
)

const stateVersion = 1

type tokenizerState struct {
	Options    tokenizer.Options           `json:"options"`
	StopWords  []string                    `json:"stop_words"`
	Dictionary []tokenizer.DictionaryEntry `json:"user_dictionary,omitempty"`
}

type state struct {
	Version            int             `json:"version"`
	Tokenizer          tokenizerState  `json:"tokenizer"`
	Documents          []string        `json:"documents"`
	TokenizedDocuments [][]string      `json:"tokenized_documents"`
	Model              tfidf.Snapshot  `json:"model"`
	Pending            *tfidf.Snapshot `json:"pending_model,omitempty"`
	Reduction          tfidf.Strategy  `json:"reduction"`
	UpdateThreshold    float64         `json:"update_threshold"`
	ChangesSinceUpdate int             `json:"changes_since_update"`
	IsRetraining       bool            `json:"is_retraining"`
	RetrainProgress    float32         `json:"retrain_progress"`
	Phase              Phase           `json:"retrain_step"`
}

// Export serializes the full controller state, including an in-flight
// retrain, as JSON.
func (c *Controller) Export() (string, error) {
	s := state{
		Version: stateVersion,
		Tokenizer: tokenizerState{
			Options:   c.tok.Options(),
			StopWords: c.tok.StopWords(),
		},
		Documents:          c.documents,
		TokenizedDocuments: c.tokenized,
		Model:              c.model.Load().Snapshot(),
		Reduction:          c.reduction,
		UpdateThreshold:    c.updateThreshold,
		ChangesSinceUpdate: c.changesSinceUpdate,
		IsRetraining:       c.retraining,
		RetrainProgress:    c.progress,
		Phase:              c.phase,
	}
	if d := c.tok.UserDictionary(); d != nil {
		s.Tokenizer.Dictionary = d.Entries()
	}
	if c.pending != nil {
		p := c.pending.Snapshot()
		s.Pending = &p
	}
	if s.Documents == nil {
		s.Documents = []string{}
		s.TokenizedDocuments = [][]string{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode model: %w", err)
	}
	return string(data), nil
}

// Import restores a controller from Export output. Every failure wraps
// ErrDecode.
func Import(data string, opts ...Option) (*Controller, error) {
	var s state
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if s.Version != stateVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrDecode, s.Version)
	}
	if len(s.Documents) != len(s.TokenizedDocuments) {
		return nil, fmt.Errorf("%w: %d documents but %d tokenized documents",
			ErrDecode, len(s.Documents), len(s.TokenizedDocuments))
	}
	if s.IsRetraining != (s.Phase != PhaseIdle) {
		return nil, fmt.Errorf("%w: retrain flag disagrees with phase %s", ErrDecode, s.Phase)
	}
	if s.IsRetraining && s.Pending == nil {
		return nil, fmt.Errorf("%w: retrain in progress without a pending model", ErrDecode)
	}
	if s.Reduction == "" {
		s.Reduction = tfidf.StrategySVD
	}

	live, err := tfidf.FromSnapshot(s.Model)
	if err != nil {
		return nil, fmt.Errorf("%w: live model: %w", ErrDecode, err)
	}
	var pending *tfidf.Model
	if s.Pending != nil {
		if pending, err = tfidf.FromSnapshot(*s.Pending); err != nil {
			return nil, fmt.Errorf("%w: pending model: %w", ErrDecode, err)
		}
	}

	tok := tokenizer.NewWithOptions(s.Tokenizer.Options)
	tok.SetStopWords(s.Tokenizer.StopWords)
	if len(s.Tokenizer.Dictionary) > 0 {
		tok.SetUserDictionary(s.Tokenizer.Dictionary)
	}

	opts = append([]Option{WithReduction(s.Reduction)}, opts...)
	c := New(s.UpdateThreshold, append(opts, WithTokenizer(tok))...)
	c.model.Store(live)
	c.pending = pending
	c.documents = s.Documents
	c.tokenized = s.TokenizedDocuments
	c.changesSinceUpdate = s.ChangesSinceUpdate
	c.retraining = s.IsRetraining
	c.progress = s.RetrainProgress
	c.phase = s.Phase
	c.logger.Debug("model imported",
		zap.Int("documents", len(c.documents)),
		zap.Int("vocab_size", live.VocabSize()),
		zap.Bool("retraining", c.retraining))
	return c, nil
}
