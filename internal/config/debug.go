package config

import "os"

func IsDebug() bool {
	return os.Getenv("IDEA_DEBUG") == "1"
}

func LogFormat() string {
	return os.Getenv("LOG_FORMAT")
}
