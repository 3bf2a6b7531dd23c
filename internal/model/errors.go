package model

import "errors"

// Sentinel errors for the validation pipeline. Callers discriminate with
// errors.Is; all layers wrap these with fmt.Errorf("...: %w", ...).
var (
	// ErrTopicNotFound means no reference content exists for the topic.
	// Fatal, not retryable.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrInvalidConfiguration means chunking or granularity parameters
	// are out of range. Caller error, not retryable.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmbeddingService means an embedding call failed. Retryable by
	// caller policy; never treated as a pass or fail verdict.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrServiceUnavailable means the judge LLM could not be reached.
	ErrServiceUnavailable = errors.New("llm service unavailable")

	// ErrJudgeParse means the judge returned output that is not a
	// recognizable verdict. By default the verifier records the unit as
	// unsupported rather than aborting; strict mode surfaces this error.
	ErrJudgeParse = errors.New("unparseable judge response")
)
