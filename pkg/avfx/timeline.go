package avfx

// Timeline plays emitters over time, optionally attached to a binder.
type Timeline struct {
	Block
	LoopStart *Int
	LoopEnd   *Int
	Binder    *Ref
	ItemCount *Count
	ClipCount *Count
	Items     *List[*TimelineItem]

	// Clips are fixed-layout records kept opaque.
	Clips *List[*Bytes]
}

func NewTimeline() *Timeline {
	t := &Timeline{
		Block:     newBlock("TmLn"),
		LoopStart: NewInt("LpSt", 0),
		LoopEnd:   NewInt("LpEd", 0),
		Binder:    NewRef("BnNo", KindBinder),
	}
	t.Items = newList("Item", newTimelineItem)
	t.Clips = newList("Clip", func() *Bytes { return NewBytes("Clip") })
	t.ItemCount = newCount("TICn", t.Items.Len)
	t.ClipCount = newCount("CpCn", t.Clips.Len)
	t.add(t.LoopStart, t.LoopEnd, t.Binder, t.ItemCount, t.ClipCount, t.Items, t.Clips)
	return t
}

func (t *Timeline) Kind() Kind { return KindTimeline }

type TimelineItem struct {
	Block
	Enabled   *Bool
	StartTime *Int
	EndTime   *Int
	Emitter   *Ref

	// ClipNumber indexes the owning timeline's clips; it is not a node
	// reference.
	ClipNumber *Int
}

func newTimelineItem() *TimelineItem {
	it := &TimelineItem{
		Block:      newBlock("Item"),
		Enabled:    NewBool("bEna", true),
		StartTime:  NewInt("StTm", 0),
		EndTime:    NewInt("EdTm", 1),
		Emitter:    NewRef("EmNo", KindEmitter),
		ClipNumber: NewInt("ClNo", -1),
	}
	it.add(it.Enabled, it.StartTime, it.EndTime, it.Emitter, it.ClipNumber)
	return it
}
