package botflow

import (
	"github.com/petrijr/botflow/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Step               = api.Step
	StepFunc           = api.StepFunc
	StepResult         = api.StepResult
	StepStatus         = api.StepStatus
	Skipper            = api.Skipper
	Context            = api.Context
	RetryPolicy        = api.RetryPolicy
	FixedDelay         = api.FixedDelay
	ExponentialBackoff = api.ExponentialBackoff
	BeforeHook         = api.BeforeHook
	AfterHook          = api.AfterHook
	HookManager        = api.HookManager
	Plugin             = api.Plugin
	StepListener       = api.StepListener
	FailureListener    = api.FailureListener
	NopPlugin          = api.NopPlugin
	PluginManager      = api.PluginManager
	FlowInfo           = api.FlowInfo
	LogPlugin          = api.LogPlugin
	MetricsPlugin      = api.MetricsPlugin
	MetricsSnapshot    = api.MetricsSnapshot
	ConfigError        = api.ConfigError
	HookError          = api.HookError
	PluginError        = api.PluginError
)

// Re-export status values for convenience.

const (
	StatusSuccess = api.StatusSuccess
	StatusFailure = api.StatusFailure
	StatusSkipped = api.StatusSkipped
)

// Re-export common constructors and sentinel errors.

var (
	NewStep      = api.NewStep
	NewLogPlugin = api.NewLogPlugin

	ErrNilStep       = api.ErrNilStep
	ErrEmptyStepName = api.ErrEmptyStepName
	ErrDuplicateStep = api.ErrDuplicateStep
)
