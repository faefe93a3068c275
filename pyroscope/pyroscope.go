package pyroscope

import (
	"os"
	"runtime"

	"github.com/grafana/pyroscope-go"
	"github.com/sirupsen/logrus"
)

func buildTags(config Config) map[string]string {
	tags := map[string]string{"hostname": os.Getenv("HOSTNAME")}
	for k, v := range config.Tags {
		tags[k] = v
	}
	return tags
}

// Start begins continuous profiling. The returned profiler should be
// stopped on shutdown to flush the last upload.
func Start(logger *logrus.Logger, config Config) (*pyroscope.Profiler, error) {
	runtime.SetMutexProfileFraction(config.MutexProfileFraction)
	runtime.SetBlockProfileRate(config.BlockProfileRate)

	applicationName := config.ApplicationName
	if applicationName == "" {
		applicationName = DEFAULT_APPLICATION_NAME
	}

	pyroscopeConfig := pyroscope.Config{
		ApplicationName:   applicationName,
		ServerAddress:     config.ServerAddress,
		BasicAuthUser:     config.BasicAuthUser,
		BasicAuthPassword: config.BasicAuthPassword,
		Tags:              buildTags(config),
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,

			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexCount,
			pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockCount,
			pyroscope.ProfileBlockDuration,
		},
	}

	if config.ApiKey != "" {
		pyroscopeConfig.AuthToken = config.ApiKey
	}

	if logger != nil {
		pyroscopeConfig.Logger = logger
	}

	return pyroscope.Start(pyroscopeConfig)
}
