// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// pybench entrypoint

package main

import "github.com/sony-level/pybench/cmd"

func main() {
	cmd.Execute()
}
