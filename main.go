// SPDX-License-Identifier: MPL-2.0

package main

import cmd "ham-cli/cmd/ham"

func main() {
	cmd.Execute()
}
