// Command vtolsim simulates a fleet of eVTOL aircraft sharing a charging
// station.
package main

import "github.com/sarchlab/vtolsim/vtolsim/cmd"

func main() {
	cmd.Execute()
}
