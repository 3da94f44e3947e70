// Command vpxctl inspects table files.
package main

func main() {
	execute()
}
