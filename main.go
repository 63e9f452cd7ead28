// Studylog - log study sessions and the hours spent on them.
package main

import (
	"github.com/manav03panchal/studylog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		cmd.Die(err)
	}
}
