package config

import (
	"os"
	"runtime"

	"github.com/koding/multiconfig"
)

// Config defines grader configuration
type Config struct {
	// one-shot grading, the server is started when no notebook is given
	Notebook       string `flagUsage:"grade this executed notebook (.ipynb) and exit"`
	Expected       string `flagUsage:"expected output file (.json / .yaml)"`
	Assignment     string `flagUsage:"assignment id to look up expected output in dir"`
	Output         string `flagUsage:"write the json result to this file"`
	ExecutionError string `flagUsage:"mark the notebook execution as failed with this reason"`

	// spec store
	Dir string `flagUsage:"specifies directory of <assignment>/expected_output.{json,yaml} (in memory by default)"`

	// worker
	Parallelism int `flagUsage:"control the # of concurrent grading (default equal to number of cpu)"`

	// server config
	HTTPAddr      string `flagUsage:"specifies the http binding address" default:":5060"`
	MonitorAddr   string `flagUsage:"specifies the metrics binding address" default:":5062"`
	AuthToken     string `flagUsage:"bearer token auth for REST"`
	EnableDebug   bool   `flagUsage:"enable debug endpoint"`
	EnableMetrics bool   `flagUsage:"enable promethus metrics endpoint"`

	// logger config
	Release bool `flagUsage:"release level of logs"`
	Silent  bool `flagUsage:"do not print logs"`

	// show version and exit
	Version bool `flagUsage:"show version and exit"`
}

// Load loads config from flag & environment variables
func (c *Config) Load() error {
	cl := multiconfig.MultiLoader(
		&multiconfig.TagLoader{},
		&multiconfig.EnvironmentLoader{
			Prefix:    "NBJ",
			CamelCase: true,
		},
		&multiconfig.FlagLoader{
			CamelCase: true,
			EnvPrefix: "NBJ",
		},
	)
	if os.Getpid() == 1 {
		c.Release = true
	}
	if err := cl.Load(c); err != nil {
		return err
	}
	if c.Parallelism <= 0 {
		c.Parallelism = runtime.NumCPU()
	}
	return nil
}

// OneShot reports whether a single notebook is graded instead of serving
func (c *Config) OneShot() bool {
	return c.Notebook != "" || c.ExecutionError != ""
}
