/*
 * log.go, part of goxtal.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package xtal

import (
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

// Logger returns the commonlog logger for the given goxtal component. Names are
// prefixed with "goxtal." so the whole library can be silenced at once.
func Logger(component string) commonlog.Logger {
	if component == "" {
		return commonlog.GetLogger("goxtal")
	}
	return commonlog.GetLogger("goxtal." + component)
}

// ConfigureLogging sets the verbosity of goxtal's logs, and optionally sends them to a file.
// verbosity 0 only shows errors and warnings, higher values are more chatty.
func ConfigureLogging(verbosity int, path string) {
	if path == "" {
		commonlog.Configure(verbosity, nil)
		return
	}
	commonlog.Configure(verbosity, &path)
}
