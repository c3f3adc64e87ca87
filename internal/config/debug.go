package config

import "os"

func IsDebug() bool {
	return os.Getenv("CHATCTX_DEBUG") == "1"
}
