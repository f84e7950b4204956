// Command notes-api runs the notes HTTP API and its schema migrations.
package main

func main() {
	Execute()
}
