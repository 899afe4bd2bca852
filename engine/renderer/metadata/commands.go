package metadata

import "fmt"

/** @brief Tag of a render command. Values match the serialized command stream. */
type CommandKind int

const (
	CommandDrawPart              CommandKind = 0
	CommandBeginDynamicComposite CommandKind = 1
	CommandEndDynamicComposite   CommandKind = 2
	CommandBeginMask             CommandKind = 3
	CommandApplyMask             CommandKind = 4
	CommandBeginMaskContent      CommandKind = 5
	CommandEndMask               CommandKind = 6
)

func (k CommandKind) String() string {
	switch k {
	case CommandDrawPart:
		return "DrawPart"
	case CommandBeginDynamicComposite:
		return "BeginDynamicComposite"
	case CommandEndDynamicComposite:
		return "EndDynamicComposite"
	case CommandBeginMask:
		return "BeginMask"
	case CommandApplyMask:
		return "ApplyMask"
	case CommandBeginMaskContent:
		return "BeginMaskContent"
	case CommandEndMask:
		return "EndMask"
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

/** @brief One record of the command stream. The set of implementations is closed. */
type Command interface {
	Kind() CommandKind
	command()
}

type DrawPart struct {
	Packet DrawPacket
}

type BeginDynamicComposite struct {
	Pass DynamicCompositeSpec
}

type EndDynamicComposite struct {
	Pass DynamicCompositeSpec
}

type BeginMask struct {
	UsesStencil bool
}

type ApplyMask struct {
	Packet MaskApplyPacket
}

type BeginMaskContent struct{}

type EndMask struct{}

func (DrawPart) Kind() CommandKind              { return CommandDrawPart }
func (BeginDynamicComposite) Kind() CommandKind { return CommandBeginDynamicComposite }
func (EndDynamicComposite) Kind() CommandKind   { return CommandEndDynamicComposite }
func (BeginMask) Kind() CommandKind             { return CommandBeginMask }
func (ApplyMask) Kind() CommandKind             { return CommandApplyMask }
func (BeginMaskContent) Kind() CommandKind      { return CommandBeginMaskContent }
func (EndMask) Kind() CommandKind               { return CommandEndMask }

func (DrawPart) command()              {}
func (BeginDynamicComposite) command() {}
func (EndDynamicComposite) command()   {}
func (BeginMask) command()             {}
func (ApplyMask) command()             {}
func (BeginMaskContent) command()      {}
func (EndMask) command()               {}
