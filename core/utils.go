package core

import (
	"log"
	"os"
	"path/filepath"
)

// Getwd tries to find the project root.
// go-test changes the working directory to the test package being run during tests;
// walking back up to the directory holding go.mod keeps config loading stable.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
