package main

// Compiled-in modules. Each registers itself with internal/core at init time.
import (
	_ "github.com/onefuture/futurebuddy/internal/gateway"
	_ "github.com/onefuture/futurebuddy/modules/store/sqlite"
	_ "github.com/onefuture/futurebuddy/modules/tools/debloat"
	_ "github.com/onefuture/futurebuddy/modules/tools/drivers"
	_ "github.com/onefuture/futurebuddy/modules/tools/fileops"
	_ "github.com/onefuture/futurebuddy/modules/tools/packages"
	_ "github.com/onefuture/futurebuddy/modules/tools/systools"
	_ "github.com/onefuture/futurebuddy/modules/tools/terminal"
)
