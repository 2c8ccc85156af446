// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "Soundscape-Go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "soundscape.log")

	viper.SetDefault("model.path", "yamnet.tflite")
	viper.SetDefault("model.labelspath", "yamnet_class_map.csv")
	viper.SetDefault("model.threads", 0)
	viper.SetDefault("model.topk", DefaultTopK)

	viper.SetDefault("audio.ffmpegpath", "")
	viper.SetDefault("audio.fetchtimeout", 30)
	viper.SetDefault("audio.maxretries", DefaultMaxRetries)
	viper.SetDefault("audio.rmsscale", DefaultRMSScale)

	viper.SetDefault("soundscape.minscore", DefaultMinScore)

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.debug", false)
}
