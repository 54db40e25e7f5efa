package sequence

import "container/heap"

// PriorityItem is a queued value. Lower Priority is served first.
type PriorityItem[T any] struct {
	Value    T
	Priority float64
	index    int
}

type priorityQueue[T any] struct {
	items []*PriorityItem[T]
}

func (pq *priorityQueue[T]) Len() int {
	return len(pq.items)
}

func (pq *priorityQueue[T]) Less(i, j int) bool {
	return pq.items[i].Priority < pq.items[j].Priority
}

func (pq *priorityQueue[T]) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
	pq.items[i].index = i
	pq.items[j].index = j
}

func (pq *priorityQueue[T]) Push(x any) {
	item := x.(*PriorityItem[T])
	item.index = len(pq.items)
	pq.items = append(pq.items, item)
}

func (pq *priorityQueue[T]) Pop() any {
	old := pq.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	pq.items = old[0 : n-1]
	return item
}

// MinQueue is a binary-heap priority queue ordered by ascending priority,
// used as the open set of graph searches.
type MinQueue[T any] struct {
	pq priorityQueue[T]
}

func NewMinQueue[T any]() *MinQueue[T] {
	q := &MinQueue[T]{}
	heap.Init(&q.pq)
	return q
}

func (q *MinQueue[T]) Enqueue(value T, priority float64) *PriorityItem[T] {
	item := &PriorityItem[T]{Value: value, Priority: priority}
	heap.Push(&q.pq, item)
	return item
}

func (q *MinQueue[T]) Dequeue() (T, bool) {
	if q.pq.Len() == 0 {
		var zero T
		return zero, false
	}
	item := heap.Pop(&q.pq).(*PriorityItem[T])
	return item.Value, true
}

func (q *MinQueue[T]) Peek() (T, bool) {
	if q.pq.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.pq.items[0].Value, true
}

// Update lowers or raises the priority of a queued item in place.
func (q *MinQueue[T]) Update(item *PriorityItem[T], priority float64) {
	if item.index < 0 {
		return
	}
	item.Priority = priority
	heap.Fix(&q.pq, item.index)
}

func (q *MinQueue[T]) Len() int {
	return q.pq.Len()
}

func (q *MinQueue[T]) IsEmpty() bool {
	return q.pq.Len() == 0
}
