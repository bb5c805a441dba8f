package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"linkedlist/domain/list"
)

func main() {
	if err := run(os.Stdout); err != nil {
		log.Fatalf("demo failed: %v", err)
	}
}

func run(w io.Writer) error {
	l, err := list.New[byte]('A')
	if err != nil {
		return err
	}
	defer l.Release()

	for _, c := range []byte("pple") {
		if err := l.Append(c); err != nil {
			return fmt.Errorf("append %q: %w", c, err)
		}
	}

	fmt.Fprintf(w, "This list is %d elements long!\n", l.Len())

	l.ForEach(list.PrintAsChar[byte](w))
	fmt.Fprintln(w)
	return nil
}
