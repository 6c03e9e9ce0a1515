package main

import "github.com/OthmaneBlial/pdf-editor-offline/cmd/pdf-editor/cmd"

func main() {
	cmd.Execute()
}
