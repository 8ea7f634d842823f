package main

import "github.com/courseware-labs/ms-go-enrollments/cmd"

func main() {
	cmd.Execute()
}
