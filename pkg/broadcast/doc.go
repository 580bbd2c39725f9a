/*
Package broadcast provides an unbuffered, multi-subscriber event stream.

A Stream fans every emitted value out to all of its subscribers. It is used by
the form package for value, status, touch, focus and collection notifications,
but has no dependency on it.

	s := broadcast.New[int]()
	stop := s.Subscribe(func(v int) { fmt.Println(v) })
	s.Emit(1)
	stop()
	s.Close()
*/
package broadcast
