package utils

import (
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
)

func ToJsonStr(obj interface{}) string {
	jsonBytes, err := sonic.Marshal(obj)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to marshal json")
	}
	return string(jsonBytes)
}
