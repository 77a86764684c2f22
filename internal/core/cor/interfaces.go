// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cor (Chain of Responsibility) provides the building blocks for
// composing ingestion pipelines out of small, individually traceable commands.
// A Chain is itself a Command, so sub-pipelines with different failure
// policies can be nested inside a larger pipeline.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the context keys the chain uses to pipe the primary
// output of one command into the primary input of the next.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Context is the shared state object passed through a chain of commands. It
// carries arbitrary keyed data, the errors recorded by commands, temp files
// awaiting cleanup, and the request-scoped Go context.
type Context interface {
	SetContext(context context.Context)
	GetContext() context.Context

	// Add stores a key-value pair and returns the Context for chaining.
	Add(key string, value interface{}) Context

	// AddError records an error under the name of the command that produced it.
	AddError(key string, err error)
	GetErrors() map[string]error
	HasErrors() bool

	Get(key string) interface{}
	Remove(key string)

	// AddTempFile tracks a temporary file for removal when Close is called.
	AddTempFile(file string)
	GetTempFiles() []string
	Close()
}

// Executable is anything with a core unit of execution logic.
type Executable interface {
	Execute(context Context)
}

// Command is an atomic, thread-safe unit of work within a chain.
type Command interface {
	Executable

	GetName() string

	// GetInputParam and GetOutputParam name the context keys this command
	// reads its primary input from and writes its primary output to.
	GetInputParam() string
	GetOutputParam() string

	// IsExecutable is a precondition check run by the chain before Execute.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered sequence of commands. Chains are Commands themselves,
// which allows nesting (composite pattern).
type Chain interface {
	Command

	// ContinueOnFailure configures whether the chain keeps executing after a
	// command records an error in the context.
	ContinueOnFailure(bool) Chain

	AddCommand(command Command) Chain
}
