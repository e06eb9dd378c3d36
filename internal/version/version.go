package version

// Set at build time:
//
//	go build -ldflags "-X github.com/hxnx/aboutbot/internal/version.Version=v1.2.0"
var (
	AppName    = "aboutbot"
	Version    = "dev"
	Repository = "https://github.com/hxnx/aboutbot"
)
