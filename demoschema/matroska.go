package demoschema

import "github.com/ebmlgo/ebmlcore"

// Matroska element IDs, adapted from the teacher's element catalog
// (matroska-go's ebml.go constant block) into schema data instead of
// the teacher's switch-per-ID traversal — a direct application of the
// "schema as data, not types" design note, using the teacher's own
// catalog as the data source.
const (
	mkEBMLHeader             uint32 = 0x1A45DFA3
	mkEBMLVersion            uint32 = 0x4286
	mkEBMLReadVersion        uint32 = 0x42F7
	mkEBMLMaxIDLength        uint32 = 0x42F2
	mkEBMLMaxSizeLength      uint32 = 0x42F3
	mkEBMLDocType            uint32 = 0x4282
	mkEBMLDocTypeVersion     uint32 = 0x4287
	mkEBMLDocTypeReadVersion uint32 = 0x4285

	mkSegment = 0x18538067

	mkSeekHead = 0x114D9B74
	mkSeek     = 0x4DBB
	mkSeekID   = 0x53AB
	mkSeekPos  = 0x53AC

	mkSegmentInfo     = 0x1549A966
	mkSegmentUID      = 0x73A4
	mkSegmentFilename = 0x7384
	mkTimestampScale  = 0x2AD7B1
	mkDuration        = 0x4489
	mkDateUTC         = 0x4461
	mkTitle           = 0x7BA9
	mkMuxingApp       = 0x4D80
	mkWritingApp      = 0x5741

	mkTracks     = 0x1654AE6B
	mkTrackEntry = 0xAE
	mkTrackNum   = 0xD7
	mkTrackUID   = 0x73C5
	mkTrackType  = 0x83
	mkTrackName  = 0x536E
	mkLanguage   = 0x22B59C
	mkCodecID    = 0x86
	mkCodecPriv  = 0x63A2
	mkCodecName  = 0x258688
	mkVideo      = 0xE0
	mkAudio      = 0xE1

	mkFlagInterlaced = 0x9A
	mkPixelWidth     = 0xB0
	mkPixelHeight    = 0xBA
	mkDisplayWidth   = 0x54B0
	mkDisplayHeight  = 0x54BA

	mkSamplingFrequency = 0xB5
	mkChannels          = 0x9F
	mkBitDepth          = 0x6264

	mkCluster     = 0x1F43B675
	mkTimestamp   = 0xE7
	mkSimpleBlock = 0xA3
	mkBlockGroup  = 0xA0
	mkBlock       = 0xA1

	mkCues     = 0x1C53BB6B
	mkCuePoint = 0xBB
	mkCueTime  = 0xB3

	mkChapters    = 0x1043A770
	mkTags        = 0x1254C367
	mkAttachments = 0x1941A469
)

// NewMatroska builds a schema covering the segment-level skeleton of
// the Matroska container (EBML header, Segment, SeekHead, Info,
// Tracks, Cluster, Cues, Chapters, Tags, Attachments) — enough
// structure for cmd/ebmldump's --schema matroska mode to walk a real
// .mkv/.webm file's element hierarchy, though (like the teacher) it
// does not interpret SimpleBlock/Block lacing payloads; those remain
// opaque binary blobs to the generic cursor, exactly as Void/CRC32
// payloads are.
func NewMatroska() *Schema {
	s := &Schema{defs: make(map[uint32]*ebml.Def), children: make(map[uint32][]ebml.ChildRef)}

	def := func(id uint32, path string, kind ebml.Kind) *ebml.Def {
		d := &ebml.Def{ID: id, Path: path, Kind: kind, MaxOccurs: ebml.MaxOccursUnbounded}
		s.defs[id] = d
		return d
	}

	header := def(mkEBMLHeader, "\\EBML", ebml.KindMaster)
	header.MaxOccurs = 1
	ver := def(mkEBMLVersion, "\\EBML\\EBMLVersion", ebml.KindUint)
	ver.MaxOccurs = 1
	readVer := def(mkEBMLReadVersion, "\\EBML\\EBMLReadVersion", ebml.KindUint)
	readVer.MaxOccurs = 1
	maxID := def(mkEBMLMaxIDLength, "\\EBML\\EBMLMaxIDLength", ebml.KindUint)
	maxID.MaxOccurs = 1
	maxSize := def(mkEBMLMaxSizeLength, "\\EBML\\EBMLMaxSizeLength", ebml.KindUint)
	maxSize.MaxOccurs = 1
	docType := def(mkEBMLDocType, "\\EBML\\EBMLDocType", ebml.KindASCII)
	docType.MinOccurs, docType.MaxOccurs = 1, 1
	docTypeVer := def(mkEBMLDocTypeVersion, "\\EBML\\EBMLDocTypeVersion", ebml.KindUint)
	docTypeVer.MaxOccurs = 1
	docTypeReadVer := def(mkEBMLDocTypeReadVersion, "\\EBML\\EBMLDocTypeReadVersion", ebml.KindUint)
	docTypeReadVer.MaxOccurs = 1
	s.children[mkEBMLHeader] = refs(ver, readVer, maxID, maxSize, docType, docTypeVer, docTypeReadVer)

	segment := def(mkSegment, "\\Segment", ebml.KindMaster)
	segment.MaxOccurs = 1
	segment.UnknownSizeAllowed = true

	seekHead := def(mkSeekHead, "\\Segment\\SeekHead", ebml.KindMaster)
	seek := def(mkSeek, "\\Segment\\SeekHead\\Seek", ebml.KindMaster)
	seekID := def(mkSeekID, "\\Segment\\SeekHead\\Seek\\SeekID", ebml.KindBinary)
	seekID.MaxOccurs = 1
	seekPos := def(mkSeekPos, "\\Segment\\SeekHead\\Seek\\SeekPos", ebml.KindUint)
	seekPos.MaxOccurs = 1
	s.children[mkSeek] = refs(seekID, seekPos)
	s.children[mkSeekHead] = refs(seek)

	info := def(mkSegmentInfo, "\\Segment\\Info", ebml.KindMaster)
	segUID := def(mkSegmentUID, "\\Segment\\Info\\SegmentUID", ebml.KindBinary)
	segUID.MaxOccurs = 1
	segFilename := def(mkSegmentFilename, "\\Segment\\Info\\SegmentFilename", ebml.KindUTF8)
	segFilename.MaxOccurs = 1
	timestampScale := def(mkTimestampScale, "\\Segment\\Info\\TimestampScale", ebml.KindUint)
	timestampScale.MaxOccurs = 1
	duration := def(mkDuration, "\\Segment\\Info\\Duration", ebml.KindFloat)
	duration.MaxOccurs = 1
	dateUTC := def(mkDateUTC, "\\Segment\\Info\\DateUTC", ebml.KindDate)
	dateUTC.MaxOccurs = 1
	title := def(mkTitle, "\\Segment\\Info\\Title", ebml.KindUTF8)
	title.MaxOccurs = 1
	muxingApp := def(mkMuxingApp, "\\Segment\\Info\\MuxingApp", ebml.KindUTF8)
	muxingApp.MaxOccurs = 1
	writingApp := def(mkWritingApp, "\\Segment\\Info\\WritingApp", ebml.KindUTF8)
	writingApp.MaxOccurs = 1
	s.children[mkSegmentInfo] = refs(segUID, segFilename, timestampScale, duration, dateUTC, title, muxingApp, writingApp)

	tracks := def(mkTracks, "\\Segment\\Tracks", ebml.KindMaster)
	trackEntry := def(mkTrackEntry, "\\Segment\\Tracks\\TrackEntry", ebml.KindMaster)
	trackNum := def(mkTrackNum, "\\Segment\\Tracks\\TrackEntry\\TrackNumber", ebml.KindUint)
	trackNum.MinOccurs, trackNum.MaxOccurs = 1, 1
	trackUID := def(mkTrackUID, "\\Segment\\Tracks\\TrackEntry\\TrackUID", ebml.KindUint)
	trackUID.MinOccurs, trackUID.MaxOccurs = 1, 1
	trackType := def(mkTrackType, "\\Segment\\Tracks\\TrackEntry\\TrackType", ebml.KindUint)
	trackType.MinOccurs, trackType.MaxOccurs = 1, 1
	trackName := def(mkTrackName, "\\Segment\\Tracks\\TrackEntry\\Name", ebml.KindUTF8)
	trackName.MaxOccurs = 1
	language := def(mkLanguage, "\\Segment\\Tracks\\TrackEntry\\Language", ebml.KindASCII)
	language.MaxOccurs = 1
	codecID := def(mkCodecID, "\\Segment\\Tracks\\TrackEntry\\CodecID", ebml.KindASCII)
	codecID.MinOccurs, codecID.MaxOccurs = 1, 1
	codecPriv := def(mkCodecPriv, "\\Segment\\Tracks\\TrackEntry\\CodecPrivate", ebml.KindBinary)
	codecPriv.MaxOccurs = 1
	codecName := def(mkCodecName, "\\Segment\\Tracks\\TrackEntry\\CodecName", ebml.KindUTF8)
	codecName.MaxOccurs = 1

	video := def(mkVideo, "\\Segment\\Tracks\\TrackEntry\\Video", ebml.KindMaster)
	video.MaxOccurs = 1
	flagInterlaced := def(mkFlagInterlaced, "\\...\\Video\\FlagInterlaced", ebml.KindUint)
	flagInterlaced.MaxOccurs = 1
	pixelWidth := def(mkPixelWidth, "\\...\\Video\\PixelWidth", ebml.KindUint)
	pixelWidth.MinOccurs, pixelWidth.MaxOccurs = 1, 1
	pixelHeight := def(mkPixelHeight, "\\...\\Video\\PixelHeight", ebml.KindUint)
	pixelHeight.MinOccurs, pixelHeight.MaxOccurs = 1, 1
	displayWidth := def(mkDisplayWidth, "\\...\\Video\\DisplayWidth", ebml.KindUint)
	displayWidth.MaxOccurs = 1
	displayHeight := def(mkDisplayHeight, "\\...\\Video\\DisplayHeight", ebml.KindUint)
	displayHeight.MaxOccurs = 1
	s.children[mkVideo] = refs(flagInterlaced, pixelWidth, pixelHeight, displayWidth, displayHeight)

	audio := def(mkAudio, "\\Segment\\Tracks\\TrackEntry\\Audio", ebml.KindMaster)
	audio.MaxOccurs = 1
	samplingFreq := def(mkSamplingFrequency, "\\...\\Audio\\SamplingFrequency", ebml.KindFloat)
	samplingFreq.MinOccurs, samplingFreq.MaxOccurs = 1, 1
	channels := def(mkChannels, "\\...\\Audio\\Channels", ebml.KindUint)
	channels.MinOccurs, channels.MaxOccurs = 1, 1
	bitDepth := def(mkBitDepth, "\\...\\Audio\\BitDepth", ebml.KindUint)
	bitDepth.MaxOccurs = 1
	s.children[mkAudio] = refs(samplingFreq, channels, bitDepth)

	s.children[mkTrackEntry] = refs(trackNum, trackUID, trackType, trackName, language, codecID, codecPriv, codecName, video, audio)
	s.children[mkTracks] = refs(trackEntry)

	cluster := def(mkCluster, "\\Segment\\Cluster", ebml.KindMaster)
	cluster.UnknownSizeAllowed = true
	timestamp := def(mkTimestamp, "\\Segment\\Cluster\\Timestamp", ebml.KindUint)
	timestamp.MinOccurs, timestamp.MaxOccurs = 1, 1
	simpleBlock := def(mkSimpleBlock, "\\Segment\\Cluster\\SimpleBlock", ebml.KindBinary)
	blockGroup := def(mkBlockGroup, "\\Segment\\Cluster\\BlockGroup", ebml.KindMaster)
	block := def(mkBlock, "\\Segment\\Cluster\\BlockGroup\\Block", ebml.KindBinary)
	block.MinOccurs, block.MaxOccurs = 1, 1
	s.children[mkBlockGroup] = refs(block)
	s.children[mkCluster] = refs(timestamp, simpleBlock, blockGroup)

	cues := def(mkCues, "\\Segment\\Cues", ebml.KindMaster)
	cuePoint := def(mkCuePoint, "\\Segment\\Cues\\CuePoint", ebml.KindMaster)
	cueTime := def(mkCueTime, "\\Segment\\Cues\\CuePoint\\CueTime", ebml.KindUint)
	cueTime.MinOccurs, cueTime.MaxOccurs = 1, 1
	s.children[mkCuePoint] = refs(cueTime)
	s.children[mkCues] = refs(cuePoint)

	chapters := def(mkChapters, "\\Segment\\Chapters", ebml.KindMaster)
	tags := def(mkTags, "\\Segment\\Tags", ebml.KindMaster)
	attachments := def(mkAttachments, "\\Segment\\Attachments", ebml.KindMaster)

	s.children[mkSegment] = refs(seekHead, info, tracks, cluster, cues, chapters, tags, attachments)
	s.root = refs(header, segment)
	return s
}
