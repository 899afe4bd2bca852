//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed puppet in a window with the example configuration.
func (Run) Engine() error {
	fmt.Println("Run engine...")
	_, err := executeCmd("go", withArgs("run", ".", "-config", "marionette.toml"), withStream())
	return err
}

// Renders a few hundred testbed frames on the software device, without a window.
func (Run) Headless() error {
	_, err := executeCmd("go", withArgs("run", ".", "-device", "software", "-frames", "300"), withStream())
	return err
}

type Test mg.Namespace

// Runs the unit tests. The pipeline tests use the software device and need no GPU.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "./engine/...", "./testbed/..."), withStream())
	return err
}

// Runs the unit tests with the race detector.
func (Test) Race() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./engine/...", "./testbed/..."), withStream())
	return err
}
