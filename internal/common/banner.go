package common

import (
	"fmt"

	"github.com/ternarybob/banner"
)

const bannerKeyWidth = 12

// PrintBanner writes the startup box with the settings an operator usually
// wants to confirm before the first request arrives.
func PrintBanner(config *Config, version string) {
	b := banner.New().
		SetStyle(banner.StyleRound).
		SetWidth(64).
		SetBold(true)

	b.PrintTopLine()
	b.PrintCenteredText("StackScout " + version)
	b.PrintCenteredText("GitHub tech-stack and interview-prep toolkit")
	b.PrintSeparatorLine()

	b.SetBold(false)
	for _, kv := range bannerLines(config) {
		b.PrintKeyValue(kv[0], kv[1], bannerKeyWidth)
	}
	b.PrintBottomLine()
}

func bannerLines(config *Config) [][2]string {
	localPaths := "disabled"
	if config.Knowledge.AllowLocalPaths {
		localPaths = "enabled"
	}
	return [][2]string{
		{"Listen", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)},
		{"Storage", config.Storage.Badger.Path},
		{"LLM", string(config.LLM.DefaultProvider)},
		{"Local paths", localPaths},
	}
}
