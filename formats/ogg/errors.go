// SPDX-License-Identifier: EPL-2.0

package ogg

import "errors"

var ErrNotOgg = errors.New("not an ogg stream")
