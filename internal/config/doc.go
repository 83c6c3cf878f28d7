// SPDX-License-Identifier: EPL-2.0

// Package config loads the audingest YAML configuration.
//
// The file is looked up in the XDG config directories
// ($XDG_CONFIG_HOME/audingest/config.yaml first) unless a path is given.
// Fields missing from the file keep their defaults.
//
//	target_sample_rate: 16000
//	block_size: 1024
//	resampler: spectral   # spectral, polyphase or cubic
//	workers: 4
//	log:
//	  level: info
//	  file: ""            # set to also write rotated log files
//	  max_size_mb: 10
//	  max_backups: 3
//	  max_age_days: 28
//	  compress: false
package config
