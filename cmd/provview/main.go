// Command provview reconstructs and searches QIIME 2 provenance.
package main

func main() {
	Execute()
}
