// Package config loads typed settings from the environment.
//
// Structs describe their variables with caarlos0/env tags. A .env file in
// the working directory, if any, is read into the environment before the
// first parse; variables already set win.
//
//	type Settings struct {
//		Address string `env:"FLUFFER_ADDRESS" envDefault:"127.0.0.1:1965"`
//		Bucket  string `env:"S3_BUCKET,required"`
//	}
//
//	var s Settings
//	if err := config.Load(&s); err != nil {
//		return err
//	}
//
// Each type is parsed once per process. Later Loads of the same type copy
// the first result, so every package asking for fluffer.Config sees the
// same values. Call ResetCache after changing the environment in tests.
package config
