// Copyright (c) The UnRez Authors
// Licensed under the MIT license

/*
Package unrez reads the forks of classic Macintosh files.

Files from old Macintosh systems can have both a data fork and a resource
fork. At the filesystem level both are streams of bytes; the data fork
contains the normal file contents, and the resource fork uses a special
format to hold a collection of typed, numbered resources.

Transferring a Mac file to another system intact means preserving the
resource fork and a little Finder metadata, and several encodings grew up
to do it. MacBinary joins header, data fork, and resource fork into one
stream, and was popular for moving files that would end up back on a Mac.
AppleSingle does the same with an extensible record structure. AppleDouble
splits the file in two: the main file keeps only the data fork, and a
hidden side file named with a "._" prefix carries the resource fork and
metadata, which is what tar files, network shares, and flash drives written
by a Mac contain. Finally, some filesystems expose resource forks natively
through special paths such as "name/..namedfork/rsrc".

This package detects which encoding applies, opens both forks, parses
resource forks into a navigable type/resource directory, and converts the
legacy names involved. The pict subpackage decodes QuickDraw pictures.
*/
package unrez
