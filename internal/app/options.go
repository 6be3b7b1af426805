// Package app composes the query orchestration pipeline's options and
// wires it into a runnable application, the way the teacher's cmd/rag/app
// options/app packages compose sub-options into one CliOptions value.
package app

import (
	"errors"
	"fmt"
	"time"

	cliapp "github.com/netrag/netrag/pkg/options/app"
	cacheopts "github.com/netrag/netrag/pkg/options/cache"
	llmopts "github.com/netrag/netrag/pkg/options/llm"
	loggeropts "github.com/netrag/netrag/pkg/options/logger"
	milvusopts "github.com/netrag/netrag/pkg/options/milvus"
	"github.com/spf13/pflag"
)

var _ cliapp.CliOptions = (*Options)(nil)

// QueryOptions holds the query pipeline's own knobs, independent of any
// one backing store or provider.
//
// New reads LLMPoolSize, UseMilvus, ForceFallbackEmbedder,
// EmbeddingDimension and Collection. ListLimit, MaxContextChars,
// MaxContextTokens, LLMTimeout and MaxTokens are parsed from flags (and,
// except MaxTokens, validated) but are not passed to the orchestrator,
// which applies its own built-in list limit (50), character ceiling
// (16 KiB), token ceiling (8192) and LLM timeout (120 s), and sends no
// completion-length limit to the chat provider.
type QueryOptions struct {
	// ListLimit is the default number of records for a device listing
	// query when the caller does not specify one. Not read by New.
	ListLimit int `json:"list-limit" mapstructure:"list-limit"`

	// MaxContextChars is a character ceiling for the composed LLM
	// request. Not read by New.
	MaxContextChars int `json:"max-context-chars" mapstructure:"max-context-chars"`

	// MaxContextTokens is a cl100k_base token ceiling for the composed
	// LLM request. Not read by New.
	MaxContextTokens int `json:"max-context-tokens" mapstructure:"max-context-tokens"`

	// LLMTimeout is a per-call LLM timeout. Not read by New.
	LLMTimeout time.Duration `json:"llm-timeout" mapstructure:"llm-timeout"`

	// MaxTokens is a completion length for the chat provider. Not read by
	// New.
	MaxTokens int `json:"max-tokens" mapstructure:"max-tokens"`

	// LLMPoolSize bounds the number of LLM calls in flight at once.
	LLMPoolSize int `json:"llm-pool-size" mapstructure:"llm-pool-size"`

	// UseMilvus selects the Milvus-backed vector store and document
	// store over the in-memory one. Left false, the application runs
	// entirely in-process with no external vector database.
	UseMilvus bool `json:"use-milvus" mapstructure:"use-milvus"`

	// ForceFallbackEmbedder skips the configured embedding provider and
	// uses the deterministic hash-derived embedder unconditionally —
	// useful for running without any model endpoint reachable.
	ForceFallbackEmbedder bool `json:"force-fallback-embedder" mapstructure:"force-fallback-embedder"`

	// EmbeddingDimension is the vector width used by the Milvus
	// collection and the fallback embedder alike.
	EmbeddingDimension int `json:"embedding-dimension" mapstructure:"embedding-dimension"`

	// Collection is the Milvus collection name backing the document
	// store and the rule engine's vector index.
	Collection string `json:"collection" mapstructure:"collection"`
}

// NewQueryOptions returns QueryOptions with this domain's defaults.
func NewQueryOptions() *QueryOptions {
	return &QueryOptions{
		ListLimit:          50,
		MaxContextChars:    16 * 1024,
		MaxContextTokens:   8192,
		LLMTimeout:         120 * time.Second,
		MaxTokens:          2048,
		LLMPoolSize:        4,
		EmbeddingDimension: 384,
		Collection:         "netrag_documents",
	}
}

// AddFlags adds flags for query orchestration options to fs.
func (o *QueryOptions) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.ListLimit, "query.list-limit", o.ListLimit, "Default number of records returned by a device listing query.")
	fs.IntVar(&o.MaxContextChars, "query.max-context-chars", o.MaxContextChars, "Character ceiling on a composed LLM request.")
	fs.IntVar(&o.MaxContextTokens, "query.max-context-tokens", o.MaxContextTokens, "Token ceiling on a composed LLM request.")
	fs.DurationVar(&o.LLMTimeout, "query.llm-timeout", o.LLMTimeout, "Timeout for a single LLM call.")
	fs.IntVar(&o.MaxTokens, "query.max-tokens", o.MaxTokens, "Maximum completion tokens requested from the chat provider.")
	fs.IntVar(&o.LLMPoolSize, "query.llm-pool-size", o.LLMPoolSize, "Maximum number of concurrent LLM calls.")
	fs.BoolVar(&o.UseMilvus, "query.use-milvus", o.UseMilvus, "Back the document store and rule index with Milvus instead of an in-memory store.")
	fs.BoolVar(&o.ForceFallbackEmbedder, "query.force-fallback-embedder", o.ForceFallbackEmbedder, "Use the deterministic hash-derived embedder instead of a configured provider.")
	fs.IntVar(&o.EmbeddingDimension, "query.embedding-dimension", o.EmbeddingDimension, "Embedding vector width.")
	fs.StringVar(&o.Collection, "query.collection", o.Collection, "Milvus collection name for documents and rule vectors.")
}

// Validate checks the query options for internal consistency.
func (o *QueryOptions) Validate() []error {
	var errs []error
	if o.ListLimit <= 0 {
		errs = append(errs, fmt.Errorf("query.list-limit must be positive"))
	}
	if o.MaxContextChars <= 0 {
		errs = append(errs, fmt.Errorf("query.max-context-chars must be positive"))
	}
	if o.MaxContextTokens <= 0 {
		errs = append(errs, fmt.Errorf("query.max-context-tokens must be positive"))
	}
	if o.LLMTimeout <= 0 {
		errs = append(errs, fmt.Errorf("query.llm-timeout must be positive"))
	}
	if o.LLMPoolSize <= 0 {
		errs = append(errs, fmt.Errorf("query.llm-pool-size must be positive"))
	}
	if o.EmbeddingDimension <= 0 {
		errs = append(errs, fmt.Errorf("query.embedding-dimension must be positive"))
	}
	return errs
}

// Options is the top-level application configuration, composed of the
// logger, vector store, LLM provider, and cache sub-options plus this
// domain's own QueryOptions. It implements pkg/options/app.CliOptions so
// it can be handed straight to pkg/infra/app.WithOptions.
type Options struct {
	Log       *loggeropts.Options      `json:"log" mapstructure:"log"`
	Milvus    *milvusopts.Options      `json:"milvus" mapstructure:"milvus"`
	Embedding *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`
	Chat      *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`
	Cache     *cacheopts.Options       `json:"cache" mapstructure:"cache"`
	Query     *QueryOptions            `json:"query" mapstructure:"query"`
}

// NewOptions builds Options with every sub-option at its default.
func NewOptions() *Options {
	return &Options{
		Log:       loggeropts.NewOptions(),
		Milvus:    milvusopts.NewOptions(),
		Embedding: llmopts.NewEmbeddingOptions(),
		Chat:      llmopts.NewChatOptions(),
		Cache:     cacheopts.NewOptions(),
		Query:     NewQueryOptions(),
	}
}

// AddFlags registers every sub-option's flags on fs. Embedding and chat
// provider options share the llm.ProviderOptions type, so each is given a
// distinct prefix to keep their flags apart.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Log.AddFlags(fs)
	o.Milvus.AddFlags(fs)
	o.Embedding.AddFlags(fs, "embedding")
	o.Chat.AddFlags(fs, "chat")
	o.Cache.AddFlags(fs)
	o.Query.AddFlags(fs)
}

// Validate folds every sub-option's errors into a single combined error,
// satisfying the single-error CliOptions.Validate contract.
func (o *Options) Validate() error {
	var all []error
	all = append(all, o.Log.Validate())
	all = append(all, o.Milvus.Validate()...)
	all = append(all, o.Embedding.Validate()...)
	all = append(all, o.Chat.Validate()...)
	all = append(all, o.Cache.Validate()...)
	all = append(all, o.Query.Validate()...)
	return errors.Join(all...)
}

// Complete applies post-parse defaults across every sub-option.
func (o *Options) Complete() error {
	if err := o.Log.Complete(); err != nil {
		return fmt.Errorf("complete log options: %w", err)
	}
	if err := o.Embedding.Complete(); err != nil {
		return fmt.Errorf("complete embedding options: %w", err)
	}
	if err := o.Chat.Complete(); err != nil {
		return fmt.Errorf("complete chat options: %w", err)
	}
	if err := o.Cache.Complete(); err != nil {
		return fmt.Errorf("complete cache options: %w", err)
	}
	return nil
}
